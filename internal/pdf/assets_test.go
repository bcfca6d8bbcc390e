package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/a3tai/form-filler/internal/pdf/errors"
	"github.com/a3tai/form-filler/internal/pdf/wrapper"
)

type stubInstaller struct {
	name  string
	err   error
	calls int
}

func (s *stubInstaller) InstallFont(_, _, _ string) (string, error) {
	s.calls++
	return s.name, s.err
}

func TestAssets_LoadsOnceAndCaches(t *testing.T) {
	f := newFixture(t)
	font := filepath.Join(f.dir, "malgun.ttf")
	require.NoError(t, os.WriteFile(font, []byte("ttf"), 0o600))

	installer := &stubInstaller{name: "MalgunGothic"}
	assets := NewAssets(AssetPaths{Template: f.template, Mapping: f.mapping, Font: font, FontCacheDir: f.dir},
		1<<20, wrapper.NewPDFCPULibrary(), installer)

	first, err := assets.get(context.Background())
	require.NoError(t, err)
	second, err := assets.get(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, installer.calls)
	assert.Equal(t, "MalgunGothic", first.fonts.Unicode)
	assert.Equal(t, wrapper.LatinFont, first.fonts.Latin)
	assert.Len(t, first.pages, 2)
	assert.NotEmpty(t, first.table.Entries)
}

func TestAssets_FontInstallFailureIsInvalidAsset(t *testing.T) {
	f := newFixture(t)
	font := filepath.Join(f.dir, "broken.ttf")
	require.NoError(t, os.WriteFile(font, []byte("ttf"), 0o600))

	installer := &stubInstaller{err: errors.New("bad glyph table")}
	assets := NewAssets(AssetPaths{Template: f.template, Mapping: f.mapping, Font: font},
		1<<20, wrapper.NewPDFCPULibrary(), installer)

	err := assets.Preload(context.Background())
	var fe *pdferrors.FormError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, pdferrors.ErrorTypeInvalidAsset, fe.Type)
	assert.Contains(t, err.Error(), "broken.ttf")

	// Not cached: fixing the installer makes the next load succeed.
	installer.err, installer.name = nil, "Broken"
	require.NoError(t, assets.Preload(context.Background()))
	assert.Equal(t, 2, installer.calls)
}

func TestAssets_FontNameWithoutFile(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		fontName string
		want     string
		wantErr  bool
	}{
		{name: "core font", fontName: "Times-Roman", want: "Times-Roman"},
		{name: "blank", fontName: "  ", want: wrapper.LatinFont},
		{name: "unknown", fontName: "NoSuchFont-Regular", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			installer := &stubInstaller{}
			assets := NewAssets(AssetPaths{Template: f.template, Mapping: f.mapping, FontName: tt.fontName},
				1<<20, wrapper.NewPDFCPULibrary(), installer)

			loaded, err := assets.get(context.Background())
			assert.Equal(t, 0, installer.calls)
			if tt.wantErr {
				var fe *pdferrors.FormError
				require.True(t, errors.As(err, &fe))
				assert.Equal(t, pdferrors.ErrorTypeInvalidAsset, fe.Type)
				assert.Equal(t, tt.fontName, fe.Path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, loaded.fonts.Unicode)
		})
	}
}

func TestAssets_InvalidTemplateAndMapping(t *testing.T) {
	f := newFixture(t)
	notPDF := filepath.Join(f.dir, "template.txt")
	require.NoError(t, os.WriteFile(notPDF, []byte("x"), 0o600))
	badMapping := filepath.Join(f.dir, "bad.json")
	require.NoError(t, os.WriteFile(badMapping, []byte(`[1]`), 0o600))

	tests := []struct {
		name  string
		paths AssetPaths
	}{
		{name: "template extension", paths: AssetPaths{Template: notPDF, Mapping: f.mapping}},
		{name: "mapping shape", paths: AssetPaths{Template: f.template, Mapping: badMapping}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assets := NewAssets(tt.paths, 1<<20, wrapper.NewPDFCPULibrary(), &stubInstaller{})
			err := assets.Preload(context.Background())

			var fe *pdferrors.FormError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, pdferrors.ErrorTypeInvalidAsset, fe.Type)
		})
	}
}

func TestAssets_EmptyTemplatePathIsMissing(t *testing.T) {
	assets := NewAssets(AssetPaths{}, 1<<20, wrapper.NewPDFCPULibrary(), &stubInstaller{})
	err := assets.Preload(context.Background())

	var fe *pdferrors.FormError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, pdferrors.ErrorTypeMissingAsset, fe.Type)
}
