package kconfig

import (
	"os"
	"path/filepath"
)

// openFile reads a file by name, falling back to $srctree for relative
// paths. It returns the contents and the path that was actually read.
func (k *Kconfig) openFile(name string) ([]byte, string, error) {
	data, err := os.ReadFile(name)
	if err == nil {
		return data, name, nil
	}

	if k.srctree != "" && !filepath.IsAbs(name) {
		alt := filepath.Join(k.srctree, name)

		if data, altErr := os.ReadFile(alt); altErr == nil {
			return data, alt, nil
		}
	}

	return nil, "", err
}

// fileExists resolves a file like openFile but without reading it, for
// defconfig scanning.
func (k *Kconfig) fileExists(name string) (string, bool) {
	if _, err := os.Stat(name); err == nil {
		return name, true
	}

	if k.srctree != "" && !filepath.IsAbs(name) {
		alt := filepath.Join(k.srctree, name)

		if _, err := os.Stat(alt); err == nil {
			return alt, true
		}
	}

	return "", false
}

// SrcTree returns the source-tree root from $srctree, or an empty string.
func (k *Kconfig) SrcTree() string { return k.srctree }

// ConfigPrefix returns the symbol-name prefix used in configuration files,
// CONFIG_ unless overridden through the environment.
func (k *Kconfig) ConfigPrefix() string { return k.configPrefix }

// Env returns a value from the environment snapshot taken at construction.
func (k *Kconfig) Env(name string) string { return k.env[name] }

// DefconfigFilename scans the defaults of the defconfig_list symbol in
// declaration order and returns the first whose condition holds and whose
// file exists, trying $srctree for relative paths. It returns an empty
// string when nothing matches.
func (k *Kconfig) DefconfigFilename() string {
	if k.defconfigList == nil {
		return ""
	}

	for _, def := range k.defconfigList.defaults {
		if exprValue(def.Cond) == No {
			continue
		}

		if path, ok := k.fileExists(exprStrValue(def.Value)); ok {
			return path
		}
	}

	return ""
}
