// Package kconfig parses Kconfig configuration languages and computes
// symbol values under the tristate dependency semantics used by the
// Linux kernel build system.
//
// A [Kconfig] holds the configuration database built from a tree of
// Kconfig files. Symbols carry a type (bool, tristate, string, int,
// hex), an optional user value, and properties such as prompts,
// defaults, ranges, selects, and implies. Values are computed lazily
// and cached; setting or unsetting a user value invalidates exactly
// the symbols whose values may change.
//
// Typical use:
//
//	k, err := kconfig.Parse("Kconfig",
//		kconfig.WithEnv(map[string]string{"srctree": "."}))
//	if err != nil {
//		return err
//	}
//	if err := k.LoadConfig("", true); err != nil {
//		return err
//	}
//	if sym, ok := k.LookupSym("FOO"); ok {
//		sym.SetValue("y")
//	}
//	return k.WriteConfig(".config", "")
//
// Environment variables referenced as $(NAME) in Kconfig sources are
// taken from the map given to [WithEnv], falling back to the process
// environment. $srctree, $CONFIG_ and $KCONFIG_CONFIG keep their usual
// meanings.
package kconfig
