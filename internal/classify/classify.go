// Package classify turns raw inbound chat messages into semantic commands.
package classify

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"todam/internal/domain"
)

// Kind is the semantic command derived from one inbound message.
type Kind string

const (
	KindStartRecording Kind = "start_recording"
	KindEndRecording   Kind = "end_recording"
	KindRegister       Kind = "register"
	KindImage          Kind = "image"
	KindPlain          Kind = "plain"
)

// The literal text commands, also substituted as message content when a
// catalog sticker matches.
const (
	StartRecordingText = "start recording"
	EndRecordingText   = "end recording"
)

// Command is a classified message. Email is set only for KindRegister.
type Command struct {
	Kind  Kind
	Email string
}

// Classifier applies the classification rules against a fixed sticker
// catalog and registration email domain.
type Classifier struct {
	catalog     Catalog
	registerRe  *regexp.Regexp
	emailDomain string
}

// New builds a Classifier. emailDomain is the only domain accepted in
// /register commands, without the leading "@".
func New(catalog Catalog, emailDomain string) (*Classifier, error) {
	emailDomain = strings.TrimSpace(strings.TrimPrefix(emailDomain, "@"))
	if emailDomain == "" {
		return nil, errors.New("classify: email domain must not be empty")
	}
	re, err := regexp.Compile(fmt.Sprintf(`^/register (\S+@%s)$`, regexp.QuoteMeta(emailDomain)))
	if err != nil {
		return nil, fmt.Errorf("classify: compile register pattern: %w", err)
	}
	return &Classifier{catalog: catalog, registerRe: re, emailDomain: emailDomain}, nil
}

// Classify maps one message to a command. Precedence: image, sticker catalog,
// /register, literal start/end text, plain.
func (c *Classifier) Classify(msg domain.MessagePayload) Command {
	switch msg.Type {
	case "image":
		return Command{Kind: KindImage}
	case "sticker":
		if c.catalog.matchStart(msg.PackageID, msg.StickerID) {
			return Command{Kind: KindStartRecording}
		}
		if c.catalog.matchEnd(msg.PackageID, msg.StickerID) {
			return Command{Kind: KindEndRecording}
		}
		return Command{Kind: KindPlain}
	}

	if m := c.registerRe.FindStringSubmatch(msg.Text); m != nil {
		return Command{Kind: KindRegister, Email: m[1]}
	}

	switch msg.Text {
	case StartRecordingText:
		return Command{Kind: KindStartRecording}
	case EndRecordingText:
		return Command{Kind: KindEndRecording}
	}
	return Command{Kind: KindPlain}
}
