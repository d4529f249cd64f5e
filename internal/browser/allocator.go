// internal/browser/allocator.go
package browser

import (
	"strconv"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/storefront-e2e/internal/config"
)

// launchFlag is a single Chrome command line switch, without the leading dashes.
type launchFlag struct {
	Name  string
	Value interface{}
}

// launchFlags lists the switches derived from cfg, in the order they are applied.
// Later entries win when a name repeats.
func launchFlags(cfg config.BrowserConfig) []launchFlag {
	var flags []launchFlag
	if cfg.Headless {
		flags = append(flags, launchFlag{"headless", "new"})
	} else {
		flags = append(flags, launchFlag{"headless", false})
	}
	if cfg.DisableSandbox {
		flags = append(flags, launchFlag{"no-sandbox", true})
	}
	if cfg.DisableSharedMemory {
		flags = append(flags, launchFlag{"disable-dev-shm-usage", true})
	}
	if cfg.DisableGPU {
		flags = append(flags, launchFlag{"disable-gpu", true})
	}
	if cfg.RemoteDebuggingPort > 0 {
		flags = append(flags, launchFlag{"remote-debugging-port", strconv.Itoa(cfg.RemoteDebuggingPort)})
	}
	if cfg.WindowSize.Width > 0 && cfg.WindowSize.Height > 0 {
		flags = append(flags, launchFlag{"window-size", strconv.Itoa(cfg.WindowSize.Width) + "," + strconv.Itoa(cfg.WindowSize.Height)})
	}

	// Extra switches from config: "--no-zygote" or "--lang=en-US".
	for _, arg := range cfg.Args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name == "" {
			continue
		}
		if hasValue {
			flags = append(flags, launchFlag{name, value})
		} else {
			flags = append(flags, launchFlag{name, true})
		}
	}
	return flags
}

// DefaultAllocatorOptions builds the exec allocator options for one browser process.
func DefaultAllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for _, f := range launchFlags(cfg) {
		opts = append(opts, chromedp.Flag(f.Name, f.Value))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	return opts
}
