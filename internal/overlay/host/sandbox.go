// Package host is the in-process content platform: it sanitizes attachment
// markup, keeps the overlay list the renderer draws and turns the viewer
// camera toward pins.
package host

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/Faultbox/panoview/internal/logger"
	"github.com/Faultbox/panoview/internal/overlay"
)

// attachmentPolicy allows the markup of user-generated content: text
// formatting, links, images and tables. Scripts, styles, frames, SVG, forms,
// event handlers and non-http(s) URLs are dropped.
var attachmentPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	return p
}()

// Sandbox stores sanitized attachment markup under random handles.
type Sandbox struct {
	mu   sync.RWMutex
	docs map[overlay.AttachmentHandle]string
	log  *zap.Logger
}

var (
	_ overlay.AttachmentSandbox  = (*Sandbox)(nil)
	_ overlay.AttachmentReleaser = (*Sandbox)(nil)
)

// NewSandbox creates an empty sandbox.
func NewSandbox() *Sandbox {
	return &Sandbox{
		docs: make(map[overlay.AttachmentHandle]string),
		log:  logger.Named("sandbox"),
	}
}

// Register sanitizes content and returns a handle to it.
func (s *Sandbox) Register(ctx context.Context, content string) (overlay.AttachmentHandle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean := Sanitize(content)

	h := overlay.AttachmentHandle(uuid.NewString())
	s.mu.Lock()
	s.docs[h] = clean
	s.mu.Unlock()

	s.log.Debug("attachment registered",
		zap.String("handle", string(h)),
		zap.Int("bytes", len(clean)),
	)
	return h, nil
}

// Content returns the sanitized markup for h.
func (s *Sandbox) Content(h overlay.AttachmentHandle) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[h]
	return doc, ok
}

// Release forgets h.
func (s *Sandbox) Release(h overlay.AttachmentHandle) {
	s.mu.Lock()
	delete(s.docs, h)
	s.mu.Unlock()
}

// Len returns the number of held attachments.
func (s *Sandbox) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Sanitize strips active content from attachment markup.
func Sanitize(markup string) string {
	return attachmentPolicy.Sanitize(markup)
}
