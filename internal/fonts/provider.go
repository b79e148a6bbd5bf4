// Package fonts resolves font identifiers to renderable faces and lists the
// fonts available to clients. Lookup failures degrade through a fallback
// chain instead of failing the render.
package fonts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	// ErrInvalidName marks a font filename that failed validation.
	ErrInvalidName = errors.New("invalid font filename")
	// ErrNotFound marks a validated filename with no file behind it.
	ErrNotFound = errors.New("font not found")
)

// At 72 dpi the face size in points equals the size in pixels, so box
// math stays in one unit.
const faceDPI = 72

var safeFontName = regexp.MustCompile(`(?i)^[a-z0-9_.\-]+\.(ttf|otf)$`)

// systemFontPaths are tried when the requested file is missing from the
// fonts directory.
var systemFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"C:/Windows/Fonts/arial.ttf",
}

// Provider loads fonts from a directory and caches the parsed results.
// Face creation is per call; opentype faces are not safe for concurrent
// use, but the parsed fonts behind them are.
type Provider struct {
	dir string
	log *zap.Logger

	mu sync.RWMutex
	// parsed caches by path; a nil entry marks an existing file that
	// failed to parse so it is not re-parsed on every request.
	parsed map[string]*opentype.Font

	fallbackOnce sync.Once
	fallback     *opentype.Font
}

// New creates a Provider serving fonts from dir.
func New(dir string, log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{
		dir:    dir,
		log:    log,
		parsed: make(map[string]*opentype.Font),
	}
}

// Face returns a face for the named font at the given pixel size. The name
// is looked up in the fonts directory, then the known system font paths,
// then the embedded Go Regular font; the bitmap fallback face is the last
// resort. Face never fails: an unknown or unreadable font yields a usable
// substitute.
func (p *Provider) Face(name string, size float64) font.Face {
	for _, path := range p.candidates(name) {
		parsed := p.parsedFont(path)
		if parsed == nil {
			continue
		}
		face, err := newFace(parsed, size)
		if err != nil {
			p.log.Warn("create font face", zap.String("path", path), zap.Error(err))
			continue
		}
		return face
	}
	if parsed := p.fallbackFont(); parsed != nil {
		if face, err := newFace(parsed, size); err == nil {
			return face
		}
	}
	return basicfont.Face7x13
}

// ResolvePath validates name and returns the path of the font file inside
// the fonts directory. It returns ErrInvalidName for traversal attempts and
// malformed names, ErrNotFound when the file does not exist.
func (p *Provider) ResolvePath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", ErrInvalidName
	}
	if !safeFontName.MatchString(name) {
		return "", ErrInvalidName
	}
	path := filepath.Join(p.dir, name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("stat font %s: %w", name, err)
	}
	return path, nil
}

func (p *Provider) candidates(name string) []string {
	paths := make([]string, 0, len(systemFontPaths)+1)
	if name != "" && !strings.Contains(name, "..") && safeFontName.MatchString(name) {
		paths = append(paths, filepath.Join(p.dir, name))
	}
	return append(paths, systemFontPaths...)
}

// parsedFont returns the cached parse of the file at path, or nil when the
// file is absent or unparsable. Parse failures of existing files are cached
// as nil entries; absent files are never cached, so request-supplied names
// cannot grow the map without bound.
func (p *Provider) parsedFont(path string) *opentype.Font {
	p.mu.RLock()
	parsed, seen := p.parsed[path]
	p.mu.RUnlock()
	if seen {
		return parsed
	}

	parsed, cache := p.loadFont(path)
	if !cache {
		return parsed
	}

	p.mu.Lock()
	// A concurrent loader may have won; keep the first result.
	if prev, seen := p.parsed[path]; seen {
		parsed = prev
	} else {
		p.parsed[path] = parsed
	}
	p.mu.Unlock()
	return parsed
}

// loadFont reads and parses the font at path. cache is false when the file
// could not be read: retrying that is one cheap failed open, not worth an
// entry.
func (p *Provider) loadFont(path string) (parsed *opentype.Font, cache bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		p.log.Debug("font unavailable", zap.String("path", path), zap.Error(err))
		return nil, false
	}
	parsed, err = opentype.Parse(data)
	if err != nil {
		p.log.Warn("parse font", zap.String("path", path), zap.Error(err))
		return nil, true
	}
	return parsed, true
}

func (p *Provider) fallbackFont() *opentype.Font {
	p.fallbackOnce.Do(func() {
		parsed, err := opentype.Parse(goregular.TTF)
		if err != nil {
			p.log.Warn("parse embedded fallback font", zap.Error(err))
			return
		}
		p.fallback = parsed
	})
	return p.fallback
}

func newFace(parsed *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     faceDPI,
		Hinting: font.HintingFull,
	})
}
