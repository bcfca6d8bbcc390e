package pdf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	pdferrors "github.com/a3tai/form-filler/internal/pdf/errors"
	"github.com/a3tai/form-filler/internal/pdf/mapping"
	"github.com/a3tai/form-filler/internal/pdf/render"
	"github.com/a3tai/form-filler/internal/pdf/wrapper"
)

// AssetPaths locates the static files a render needs.
type AssetPaths struct {
	Template string
	// Font is the TrueType font for form values. When empty every stamp
	// uses the Latin core font.
	Font         string
	FontName     string
	FontCacheDir string
	Mapping      string
}

// FontInstaller registers a TrueType font and returns its name.
type FontInstaller interface {
	InstallFont(path, cacheDir, preferred string) (string, error)
}

// loadedAssets is the immutable result of a successful load.
type loadedAssets struct {
	template []byte
	pages    []render.PageSize
	table    *mapping.Table
	fonts    render.Fonts
}

// Assets loads the template, font and mapping once and caches them. A
// failed load is not cached, so the next request tries again.
type Assets struct {
	paths     AssetPaths
	validator *Validator
	inspector wrapper.Inspector
	installer FontInstaller

	mu     sync.Mutex
	loaded *loadedAssets
}

// NewAssets creates an asset store for the given paths
func NewAssets(paths AssetPaths, maxFileSize int64, inspector wrapper.Inspector, installer FontInstaller) *Assets {
	return &Assets{
		paths:     paths,
		validator: NewValidator(maxFileSize),
		inspector: inspector,
		installer: installer,
	}
}

// Paths returns the configured asset locations.
func (a *Assets) Paths() AssetPaths {
	return a.paths
}

// Preload loads the assets ahead of the first request.
func (a *Assets) Preload(ctx context.Context) error {
	_, err := a.get(ctx)
	return err
}

// get returns the cached assets, loading them on first use.
func (a *Assets) get(ctx context.Context) (*loadedAssets, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.loaded != nil {
		return a.loaded, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loaded, err := a.load()
	if err != nil {
		return nil, err
	}
	a.loaded = loaded
	return loaded, nil
}

func (a *Assets) load() (*loadedAssets, error) {
	data, err := a.validator.ReadTemplate(a.paths.Template)
	if err != nil {
		return nil, assetError("template", a.paths.Template, err)
	}
	info, err := a.inspector.Inspect(data)
	if err != nil {
		return nil, pdferrors.InvalidAsset("template", a.paths.Template, err)
	}

	fonts, err := a.loadFonts()
	if err != nil {
		return nil, err
	}

	table, err := mapping.Load(a.paths.Mapping)
	if err != nil {
		return nil, assetError("mapping", a.paths.Mapping, err)
	}

	return &loadedAssets{
		template: data,
		pages:    info.Pages,
		table:    table,
		fonts:    fonts,
	}, nil
}

func (a *Assets) loadFonts() (render.Fonts, error) {
	fonts := render.Fonts{Unicode: wrapper.LatinFont, Latin: wrapper.LatinFont}
	if a.paths.Font == "" {
		// A bare font name selects a core font or one installed earlier.
		if name := strings.TrimSpace(a.paths.FontName); name != "" {
			if !wrapper.IsFontAvailable(name) {
				return fonts, pdferrors.InvalidAsset("font", name, fmt.Errorf("font %q is not available", name))
			}
			fonts.Unicode = name
		}
		return fonts, nil
	}

	if _, err := os.Stat(a.paths.Font); err != nil {
		return fonts, assetError("font", a.paths.Font, err)
	}
	name, err := a.installer.InstallFont(a.paths.Font, a.paths.FontCacheDir, a.paths.FontName)
	if err != nil {
		return fonts, pdferrors.InvalidAsset("font", a.paths.Font, err)
	}
	fonts.Unicode = name
	return fonts, nil
}

func assetError(kind, path string, err error) *pdferrors.FormError {
	if path == "" || errors.Is(err, fs.ErrNotExist) {
		return pdferrors.MissingAsset(kind, path, err)
	}
	return pdferrors.InvalidAsset(kind, path, err)
}
