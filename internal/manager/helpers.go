package manager

import (
	"cleepadm/internal/lifecycle"
)

// Helper: noun for an operation kind.
func operation(k lifecycle.Kind) string {
	switch k {
	case lifecycle.KindInstall:
		return "installation"
	case lifecycle.KindUninstall:
		return "uninstallation"
	default:
		return "update"
	}
}

// Helper: past tense for an operation kind.
func pastTense(k lifecycle.Kind) string {
	switch k {
	case lifecycle.KindInstall:
		return "installed"
	case lifecycle.KindUninstall:
		return "uninstalled"
	default:
		return "updated"
	}
}

// Helper: the platform self-update is shown as "Cleep".
func displayName(module string) string {
	if module == lifecycle.CleepModule {
		return "Cleep"
	}
	return module
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
