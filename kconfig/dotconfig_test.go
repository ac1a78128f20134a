package kconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const dotSrc = `
config MODULES
	bool
	default y
	option modules

menu "General"

config FOO
	bool "foo"
	default y

config BAR
	bool "bar"
	default y

config BAZ
	tristate "baz"
	default m

endmenu

menu "Strings and numbers"

config NAME
	string "name"
	default "plain"

config COUNT
	int "count"
	default 10

config MASK
	hex "mask"
	default 0x1F

endmenu
`

func TestWriteConfig(t *testing.T) {
	k := parseTest(t, dotSrc)

	sym(t, k, "NAME").SetValue(`a "b" c`)

	path := filepath.Join(t.TempDir(), ".config")
	if err := k.WriteConfig(path, ""); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	want := DefaultConfigHeader + `CONFIG_MODULES=y

#
# General
#
CONFIG_FOO=y
CONFIG_BAR=y
CONFIG_BAZ=m

#
# Strings and numbers
#
CONFIG_NAME="a \"b\" c"
CONFIG_COUNT=10
CONFIG_MASK=0x1F
`

	if got := string(data); got != want {
		t.Errorf("written config:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteConfigNotSet(t *testing.T) {
	k := parseTest(t, dotSrc)

	sym(t, k, "FOO").SetValue("n")

	path := filepath.Join(t.TempDir(), ".config")
	if err := k.WriteConfig(path, "# Test header\n"); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	got := string(data)

	if !strings.Contains(got, "# CONFIG_FOO is not set\n") {
		t.Errorf("disabled symbol not recorded:\n%s", got)
	}

	if !strings.Contains(got, "# Test header\n") {
		t.Errorf("custom header missing:\n%s", got)
	}
}

func TestLoadConfig(t *testing.T) {
	k := parseTest(t, dotSrc)

	path := filepath.Join(t.TempDir(), ".config")
	content := `# Board defaults
# for the test rig

CONFIG_FOO=y
# CONFIG_BAR is not set
CONFIG_BAZ=m
CONFIG_NAME="hello \"x\""
CONFIG_COUNT=5
CONFIG_MASK=0x2A
`

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := k.LoadConfig(path, true); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got := sym(t, k, "BAR").TriValue(); got != No {
		t.Errorf("BAR = %v, want n from the not-set line", got)
	}

	if got := sym(t, k, "BAZ").TriValue(); got != Mod {
		t.Errorf("BAZ = %v, want m", got)
	}

	if got := sym(t, k, "NAME").StrValue(); got != `hello "x"` {
		t.Errorf("NAME = %q", got)
	}

	if got := sym(t, k, "COUNT").StrValue(); got != "5" {
		t.Errorf("COUNT = %q", got)
	}

	if got := sym(t, k, "MASK").StrValue(); got != "0x2A" {
		t.Errorf("MASK = %q", got)
	}

	if got := k.ConfigHeader; got != "# Board defaults\n# for the test rig\n" {
		t.Errorf("header = %q", got)
	}
}

func TestLoadConfigDiagnostics(t *testing.T) {
	k := parseTest(t, dotSrc)

	path := filepath.Join(t.TempDir(), ".config")
	content := `CONFIG_UNDEFINED=y
garbage line
CONFIG_NAME=unquoted
CONFIG_BAZ=bogus
CONFIG_COUNT=5
CONFIG_COUNT=5
CONFIG_FOO=y
CONFIG_FOO=n
`

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := k.LoadConfig(path, true); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	for _, want := range []string{
		"undefined symbol CONFIG_UNDEFINED",
		"malformed line \"garbage line\"",
		"malformed string literal",
		"'bogus' is not a valid value",
		"redundant assignment",
		"set more than once",
	} {
		if !containsWarning(k, want) {
			t.Errorf("missing warning %q", want)
		}
	}

	// The last assignment wins
	if got := sym(t, k, "FOO").TriValue(); got != No {
		t.Errorf("FOO = %v after reassignment, want n", got)
	}

	// Rejected assignments leave the default in place
	if got := sym(t, k, "BAZ").TriValue(); got != Mod {
		t.Errorf("BAZ = %v, want m from default", got)
	}

	if got := sym(t, k, "NAME").StrValue(); got != "plain" {
		t.Errorf("NAME = %q, want default", got)
	}
}

func TestLoadConfigMerge(t *testing.T) {
	k := parseTest(t, dotSrc)

	sym(t, k, "FOO").SetValue("n")

	path := filepath.Join(t.TempDir(), ".config")
	if err := os.WriteFile(path, []byte("CONFIG_COUNT=3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := k.LoadConfig(path, false); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	// Merging keeps existing user values
	if got := sym(t, k, "FOO").TriValue(); got != No {
		t.Errorf("FOO = %v after merge, want n", got)
	}

	if got := sym(t, k, "COUNT").StrValue(); got != "3" {
		t.Errorf("COUNT = %q", got)
	}

	if err := k.LoadConfig(path, true); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	// Replacing clears them
	if got := sym(t, k, "FOO").TriValue(); got != Yes {
		t.Errorf("FOO = %v after replace, want y from default", got)
	}

	if _, ok := sym(t, k, "FOO").UserValue(); ok {
		t.Error("FOO still has a user value after replace")
	}
}

func TestConfigRoundtrip(t *testing.T) {
	k := parseTest(t, dotSrc)

	sym(t, k, "FOO").SetValue("n")
	sym(t, k, "BAZ").SetValue("y")
	sym(t, k, "NAME").SetValue(`quoted "text" with \ slash`)
	sym(t, k, "COUNT").SetValue("7")

	path := filepath.Join(t.TempDir(), ".config")
	if err := k.WriteConfig(path, ""); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	k2 := parseTest(t, dotSrc)
	if err := k2.LoadConfig(path, true); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	for _, name := range []string{"FOO", "BAR", "BAZ", "NAME", "COUNT", "MASK"} {
		if got, want := sym(t, k2, name).StrValue(), sym(t, k, name).StrValue(); got != want {
			t.Errorf("%s = %q after roundtrip, want %q", name, got, want)
		}
	}
}

func TestLoadConfigDefaultPath(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "env.config")
	if err := os.WriteFile(path, []byte("CONFIG_FOO=n\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	k := parseTest(t, dotSrc, WithEnv(map[string]string{
		"KCONFIG_CONFIG": path,
	}))

	if err := k.LoadConfig("", true); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got := sym(t, k, "FOO").TriValue(); got != No {
		t.Errorf("FOO = %v, want n from $KCONFIG_CONFIG", got)
	}
}

func TestDefconfigFilename(t *testing.T) {
	dir := t.TempDir()

	present := filepath.Join(dir, "present_defconfig")
	if err := os.WriteFile(present, []byte("CONFIG_A=y\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	k := parseTest(t, `
config DEFCONFIG_LIST
	string
	option defconfig_list
	default "missing_defconfig"
	default "present_defconfig"
`, WithEnv(map[string]string{"srctree": dir}))

	if got := k.DefconfigFilename(); got != present {
		t.Errorf("defconfig = %q, want %q", got, present)
	}
}

func TestDefconfigFilenameNone(t *testing.T) {
	k := parseTest(t, dotSrc)

	if got := k.DefconfigFilename(); got != "" {
		t.Errorf("defconfig = %q without a defconfig_list symbol", got)
	}
}
