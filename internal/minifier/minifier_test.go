package minifier

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whit3rabbit/shmixer/internal/config"
)

func minify(t *testing.T, source string, cfg *config.Config) string {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	got, err := Minify(source, "", cfg)
	require.NoError(t, err)
	return got
}

func obfuscationConfig() *config.Config {
	cfg := config.Default()
	cfg.Obfuscation.Enabled = true
	return cfg
}

func TestMinifyStripsNoise(t *testing.T) {
	input := "#!/bin/bash\n# comment\nset -euo pipefail\n\necho hello\necho world\n"
	assert.Equal(t, "echo hello;echo world;", minify(t, input, nil))
}

func TestMinifyKeepsControlFlow(t *testing.T) {
	input := "if true; then\n    echo yes\nfi\n"
	got := minify(t, input, nil)
	assert.Equal(t, "if true;then echo yes;fi;", got)
	assert.NotContains(t, got, "then;")
}

func TestMinifyHeredocPreserved(t *testing.T) {
	input := "cat <<EOF\n# inside heredoc\nEOF\necho done\n"
	assert.Equal(t, "cat <<EOF\n# inside heredoc\nEOF\necho done;", minify(t, input, nil))
}

func TestMinifyMultilineStringWithHash(t *testing.T) {
	input := "msg=\"hello\nworld # tail\"\necho \"$msg\"\n"
	got := minify(t, input, nil)
	assert.Equal(t, `msg="hello"$'\n'"world # tail";echo "$msg";`, got)
}

func TestMinifyObfuscation(t *testing.T) {
	got := minify(t, "foo=bar\necho $foo\n", obfuscationConfig())
	assert.Equal(t, "a0=bar;echo $a0;", got)
}

func TestMinifyCustomPrefix(t *testing.T) {
	cfg := obfuscationConfig()
	cfg.Obfuscation.VarPrefix = "x"
	got := minify(t, "foo=bar\necho $foo\n", cfg)
	assert.Equal(t, "x0=bar;echo $x0;", got)
}

func TestMinifyExcludedVariablesKept(t *testing.T) {
	cfg := obfuscationConfig()
	cfg.Obfuscation.ExcludeVars = []string{"foo"}
	got := minify(t, "foo=1\nbar=2\necho $foo $bar\n", cfg)
	assert.Equal(t, "foo=1;a0=2;echo $foo $a0;", got)
}

func TestMinifyDefaultIgnoreList(t *testing.T) {
	got := minify(t, "usage=1\nargs=2\necho $usage $args\n", obfuscationConfig())
	assert.Equal(t, "usage=1;args=2;echo $usage $args;", got)
}

func TestMinifyIgnoreAnnotationSurvivesStrip(t *testing.T) {
	// The annotation is a comment, so the strip phase removes it. Discovery
	// runs on the pre-strip source where the annotation still guards the
	// next line.
	input := "# obfus ignore variable\nsecret=1\nfoo=2\necho $secret $foo\n"
	got := minify(t, input, obfuscationConfig())
	assert.Equal(t, "secret=1;a0=2;echo $secret $a0;", got)
}

func TestMinifyUnderscorePrefixIntact(t *testing.T) {
	input := "local path=\"${1}\"\nlocal _path=\"\"\n_path=\"${1}\"\necho \"${_path}\"\necho \"${path}\"\n"
	got := minify(t, input, obfuscationConfig())
	assert.Contains(t, got, "${_path}")
	assert.NotContains(t, got, "_a0")
}

func TestMinifyLongUnderscoreNameIntact(t *testing.T) {
	input := "local path=\"${1}\"\nlocal _argsh_builtin_path=\"\"\n_argsh_builtin_path=\"${1}\"\necho \"${_argsh_builtin_path}\"\n"
	got := minify(t, input, obfuscationConfig())
	assert.Contains(t, got, "_argsh_builtin_path")
	assert.NotContains(t, got, "_argsh_builtin_a0")
}

func TestMinifyMidlineArrayWrite(t *testing.T) {
	input := "local -a prev\nlocal j=0\nfor (( j=0; j <= n; j++ )); do prev[j]=\"${j}\"; done\necho \"${prev[@]}\"\n"
	got := minify(t, input, obfuscationConfig())
	assert.NotRegexp(t, `\bprev\b`, got)
}

func TestMinifySubstringOffset(t *testing.T) {
	input := "local i=0\nlocal str=\"hello\"\necho \"${str:i-1:1}\"\necho \"${str:0:i}\"\n"
	got := minify(t, input, obfuscationConfig())
	assert.NotRegexp(t, `\$\{[^}]+:[^}]*\bi\b`, got)
}

func TestMinifyReadFlagIntact(t *testing.T) {
	input := "local a flags\nIFS='|' read -ra flags <<< \"$a\"\n"
	got := minify(t, input, obfuscationConfig())
	assert.NotRegexp(t, `read -ra\d`, got)
}

func TestMinifyBundleDisabledLeavesImports(t *testing.T) {
	// Static imports that were not bundled are stripped, not executed.
	got := minify(t, "import lib\necho main\n", nil)
	assert.Equal(t, "echo main;", got)
}

func TestMinifyWithBundle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.sh"), []byte("echo lib\n"), 0o644))
	input := filepath.Join(dir, "main.sh")
	require.NoError(t, os.WriteFile(input, []byte("import lib\necho main\n"), 0o644))

	cfg := config.Default()
	cfg.Bundle.Enabled = true
	got, err := Minify("import lib\necho main\n", input, cfg)
	require.NoError(t, err)
	assert.Equal(t, "echo lib;echo main;", got)
}

func TestMinifyBundleFunctionScope(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.sh"), []byte("echo lib\n"), 0o644))
	input := filepath.Join(dir, "main.sh")
	source := "import lib\nuse_lib() {\nimport lib\n}\nuse_lib\n"
	require.NoError(t, os.WriteFile(input, []byte(source), 0o644))

	cfg := config.Default()
	cfg.Bundle.Enabled = true
	got, err := Minify(source, input, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(got, "echo lib"))
}

func TestMinifyIdempotent(t *testing.T) {
	input := "#!/bin/bash\n# c\nfoo=1\necho $foo\n"
	once := minify(t, input, nil)
	twice := minify(t, once, nil)
	assert.Equal(t, once, twice)
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.sh")
	out := filepath.Join(dir, "out.sh")
	require.NoError(t, os.WriteFile(in, []byte("# note\necho ok\n"), 0o644))

	require.NoError(t, ProcessFile(in, out, config.Default()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "echo ok;", string(data))
}

func TestProcessFileMissingInput(t *testing.T) {
	dir := t.TempDir()
	err := ProcessFile(filepath.Join(dir, "missing.sh"), filepath.Join(dir, "out.sh"), config.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.sh")
}

func TestIgnoreList(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "usage,args", ignoreList(cfg))

	cfg.Obfuscation.ExcludeVars = []string{"foo", "bar"}
	assert.Equal(t, "usage,args,foo,bar", ignoreList(cfg))
}
