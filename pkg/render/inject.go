package render

import (
	"context"
	"regexp"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/slate/internal/errors"
)

// Region is the document region deferred content is injected into.
type Region string

const (
	RegionHead Region = "head"
	RegionBody Region = "body"
)

// Placement selects the start (Pre) or the end (Post) of a region.
type Placement string

const (
	Pre  Placement = "pre"
	Post Placement = "post"
)

// Injector holds the deferred content of one region.
type Injector struct {
	Pre  []any
	Post []any
}

func (in *Injector) push(p Placement, v any) {
	if p == Pre {
		in.Pre = append(in.Pre, v)
		return
	}
	in.Post = append(in.Post, v)
}

// Root is the state shared by all owners of one render.
type Root struct {
	mu       sync.Mutex
	resolved bool
	head     Injector
	body     Injector
	onDrop   func()
}

func newRoot(onDrop func()) *Root {
	return &Root{onDrop: onDrop}
}

// Resolved reports whether the main tree has finished resolving.
func (r *Root) Resolved() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolved
}

// Inject defers v into region at placement. Once the main tree has resolved
// content is dropped and Inject returns false.
func (r *Root) Inject(region Region, p Placement, v any) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	if r.resolved {
		r.mu.Unlock()
		if r.onDrop != nil {
			r.onDrop()
		}
		return false
	}
	if region == RegionHead {
		r.head.push(p, v)
	} else {
		r.body.push(p, v)
	}
	r.mu.Unlock()
	return true
}

// markResolved closes r to injection and returns the collected content.
func (r *Root) markResolved() (head, body Injector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved = true
	return r.head, r.body
}

var (
	htmlOpen  = regexp.MustCompile(`(?i)<html\b[^>]*>`)
	htmlClose = regexp.MustCompile(`(?i)</html\s*>`)
	headOpen  = regexp.MustCompile(`(?i)<head\b[^>]*>`)
	headClose = regexp.MustCompile(`(?i)</head\s*>`)
	bodyOpen  = regexp.MustCompile(`(?i)<body\b[^>]*>`)
	bodyClose = regexp.MustCompile(`(?i)</body\s*>`)
)

// inject marks root resolved, resolves the deferred content and splices it
// into doc.
func inject(ctx context.Context, o *Owner, root *Root, doc string) (string, error) {
	head, body := root.markResolved()

	lists := [4][]any{head.Pre, head.Post, body.Pre, body.Post}
	var parts [4]string
	g, gctx := errgroup.WithContext(ctx)
	for i, list := range lists {
		g.Go(func() error {
			s, err := resolveWait(gctx, o, Sequence(list), true)
			parts[i] = s
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return Splice(doc, parts[0], parts[1], parts[2], parts[3])
}

// Splice inserts head and body content into doc by locating the html, head
// and body tags.
//
// With an <html> tag a missing head is created right after it and a missing
// body right before </html>. Without one, content goes into whichever of
// head and body exists; when neither does the whole document is wrapped.
func Splice(doc, headPre, headPost, bodyPre, bodyPost string) (string, error) {
	if loc := htmlOpen.FindStringIndex(doc); loc != nil {
		out, ok, err := insertInto(doc, headOpen, headClose, "head", headPre, headPost)
		if err != nil {
			return "", err
		}
		if !ok {
			out = doc[:loc[1]] + "<head>" + headPre + headPost + "</head>" + doc[loc[1]:]
		}

		withBody, ok, err := insertInto(out, bodyOpen, bodyClose, "body", bodyPre, bodyPost)
		if err != nil {
			return "", err
		}
		if ok {
			return withBody, nil
		}
		end := htmlClose.FindStringIndex(out)
		if end == nil {
			return "", missingTag("html")
		}
		return out[:end[0]] + "<body>" + bodyPre + bodyPost + "</body>" + out[end[0]:], nil
	}

	out, hasHead, err := insertInto(doc, headOpen, headClose, "head", headPre, headPost)
	if err != nil {
		return "", err
	}
	out, hasBody, err := insertInto(out, bodyOpen, bodyClose, "body", bodyPre, bodyPost)
	if err != nil {
		return "", err
	}

	switch {
	case hasHead && !hasBody:
		end := headClose.FindStringIndex(out)
		return out[:end[1]] + bodyPre + out[end[1]:] + bodyPost, nil
	case !hasHead && hasBody:
		return headPre + headPost + out, nil
	case !hasHead && !hasBody:
		return headPre + headPost + bodyPre + out + bodyPost, nil
	}
	return out, nil
}

// insertInto puts pre after the first open tag and post before the matching
// close tag. ok is false when the open tag is absent.
func insertInto(doc string, openTag, closeTag *regexp.Regexp, name, pre, post string) (string, bool, error) {
	loc := openTag.FindStringIndex(doc)
	if loc == nil {
		return doc, false, nil
	}
	rel := closeTag.FindStringIndex(doc[loc[1]:])
	if rel == nil {
		return "", false, missingTag(name)
	}
	end := loc[1] + rel[0]
	return doc[:loc[1]] + pre + doc[loc[1]:end] + post + doc[end:], true, nil
}

func missingTag(name string) error {
	return errors.New(errors.CodeMalformedDocument).WithDetailf("missing </%s>", name)
}

// IsMalformedDocument reports whether err was raised because the rendered
// document has an opening html, head or body tag without its closing tag.
func IsMalformedDocument(err error) bool {
	return errors.HasCode(err, errors.CodeMalformedDocument)
}
