package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinTargets(t *testing.T) {
	target, err := TargetNamed("AArch64")
	require.NoError(t, err)
	assert.Equal(t, 8, target.PointerSize)

	_, err = TargetNamed("pdp11")
	assert.ErrorContains(t, err, `unknown compilation target "pdp11"`)

	assert.Equal(t, []string{"aarch64", "riscv64", "wasm32", "x86", "x86_64"}, TargetNames())
	assert.Equal(t, DefaultTargetName, DefaultTarget().Name)
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name    string
		ext     string
		data    string
		want    CompilationTarget
		wantErr string
	}{
		{
			name: "yaml defaults alignment",
			ext:  ".yaml",
			data: "name: avr\npointerSize: 2\n",
			want: CompilationTarget{Name: "avr", PointerSize: 2, PointerAlignment: 2},
		},
		{
			name: "toml",
			ext:  ".TOML",
			data: "name = \"m68k\"\npointerSize = 4\npointerAlignment = 2\n",
			want: CompilationTarget{Name: "m68k", PointerSize: 4, PointerAlignment: 2},
		},
		{
			name:    "missing name",
			ext:     ".yml",
			data:    "pointerSize: 8\n",
			wantErr: "target name is required",
		},
		{
			name:    "bad pointer size",
			ext:     ".yaml",
			data:    "name: odd\npointerSize: 3\n",
			wantErr: "unsupported pointer size 3",
		},
		{
			name:    "unknown format",
			ext:     ".json",
			data:    "{}",
			wantErr: "unsupported target file format",
		},
		{
			name:    "malformed yaml",
			ext:     ".yaml",
			data:    "name: [",
			wantErr: "parsing yaml target",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(tt.ext, []byte(tt.data))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = \"rv32\"\npointerSize = 4\n"), 0o644))

	target, err := LoadTarget(path)
	require.NoError(t, err)
	assert.Equal(t, CompilationTarget{Name: "rv32", PointerSize: 4, PointerAlignment: 4}, target)

	_, err = LoadTarget(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading target file")
}

func TestHasSyntaxFileExt(t *testing.T) {
	assert.True(t, HasSyntaxFileExt("script.yaml"))
	assert.True(t, HasSyntaxFileExt("dir/script.sysmel-asg"))
	assert.False(t, HasSyntaxFileExt(".yaml"))
	assert.False(t, HasSyntaxFileExt("script.json"))
}
