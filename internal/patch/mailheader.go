package patch

import (
	"fmt"
	"strings"
	"time"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// format-patch starts every mail with this line; the date is fixed by git.
const mboxMagic = "From 0000000000000000000000000000000000000000 Mon Sep 17 00:00:00 2001"

type MailHeader struct {
	SHA         string
	AuthorName  string
	AuthorEmail string
	AuthorDate  time.Time
	Title       string
	Message     string
}

// ParseMailHeader reads the commit metadata from the preamble that precedes
// the first file in text.
func ParseMailHeader(text string) (*MailHeader, error) {
	preamble := text
	if i := strings.Index(text, "\ndiff --git"); i >= 0 {
		preamble = text[:i+1]
	} else if strings.HasPrefix(text, "diff --git") {
		preamble = ""
	}
	if strings.TrimSpace(preamble) == "" {
		return nil, fmt.Errorf("patch has no header")
	}
	if !strings.HasPrefix(preamble, "From ") {
		preamble = mboxMagic + "\n" + preamble
	}

	ph, err := gitdiff.ParsePatchHeader(preamble)
	if err != nil {
		return nil, fmt.Errorf("parse patch header: %w", err)
	}

	mh := &MailHeader{
		SHA:        ph.SHA,
		AuthorDate: ph.AuthorDate,
		Title:      ph.Title,
		Message:    ph.Message(),
	}
	if strings.Trim(mh.SHA, "0") == "" {
		mh.SHA = ""
	}
	if ph.Author != nil {
		mh.AuthorName = ph.Author.Name
		mh.AuthorEmail = ph.Author.Email
	}
	return mh, nil
}

func (h *MailHeader) Author() string {
	if h == nil {
		return ""
	}
	if h.AuthorEmail == "" {
		return h.AuthorName
	}
	if h.AuthorName == "" {
		return h.AuthorEmail
	}
	return fmt.Sprintf("%s <%s>", h.AuthorName, h.AuthorEmail)
}
