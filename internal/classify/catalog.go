package classify

import (
	"encoding/json"
	"fmt"
	"os"
)

// StickerRef identifies one sticker within a sticker package.
type StickerRef struct {
	PackageID string `json:"packageId"`
	StickerID string `json:"stickerId"`
}

// Catalog maps sticker identifiers to recording commands. It is loaded once
// at process start; a missing or unparseable catalog is a startup failure,
// never a per-event one.
type Catalog struct {
	StartRecording []StickerRef `json:"start_recording"`
	EndRecording   []StickerRef `json:"end_recording"`
}

// LoadCatalog reads a sticker catalog from a JSON file.
func LoadCatalog(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("classify: read sticker catalog %q: %w", path, err)
	}
	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return Catalog{}, fmt.Errorf("classify: parse sticker catalog %q: %w", path, err)
	}
	return c, nil
}

func (c Catalog) matchStart(packageID, stickerID string) bool {
	return matchSticker(c.StartRecording, packageID, stickerID)
}

func (c Catalog) matchEnd(packageID, stickerID string) bool {
	return matchSticker(c.EndRecording, packageID, stickerID)
}

func matchSticker(refs []StickerRef, packageID, stickerID string) bool {
	for _, ref := range refs {
		if ref.PackageID == packageID && ref.StickerID == stickerID {
			return true
		}
	}
	return false
}
