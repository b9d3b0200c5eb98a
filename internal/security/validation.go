package security

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// ValidPackageNameRegex follows makepkg's pkgname rules: lowercase
	// alphanumerics plus @ . _ + -
	ValidPackageNameRegex = regexp.MustCompile(`^[a-z0-9@._+-]+$`)

	// ValidSearchTermRegex allows what pacman -Ss accepts as a plain term
	ValidSearchTermRegex = regexp.MustCompile(`^[\pL\pN@._+ -]+$`)
)

// ValidatePackageName validates a package name before it is handed to
// pacman or yay as an argument
func ValidatePackageName(name string) error {
	if name == "" {
		return fmt.Errorf("package name cannot be empty")
	}

	if len(name) > 255 {
		return fmt.Errorf("package name too long (max 255 characters)")
	}

	if strings.HasPrefix(name, "-") || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid package name %q: must not start with a hyphen or dot", name)
	}

	if !ValidPackageNameRegex.MatchString(name) {
		return fmt.Errorf("invalid package name %q: must contain only lowercase alphanumerics and @ . _ + -", name)
	}

	return nil
}

// ValidatePackageNames validates every name and reports the first failure
func ValidatePackageNames(names []string) error {
	for _, n := range names {
		if err := ValidatePackageName(n); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSearchTerm rejects terms pacman or yay would parse as options
func ValidateSearchTerm(term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return fmt.Errorf("search term cannot be empty")
	}

	if len(term) > 255 {
		return fmt.Errorf("search term too long (max 255 characters)")
	}

	if strings.HasPrefix(term, "-") {
		return fmt.Errorf("search term must not start with '-'")
	}

	if !ValidSearchTermRegex.MatchString(term) {
		return fmt.Errorf("search term contains unsupported characters")
	}

	return nil
}

// ValidateFilePath validates a user supplied file path (theme import/export)
func ValidateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	if len(path) >= 4096 {
		return fmt.Errorf("file path too long (max 4096 characters)")
	}

	if strings.ContainsAny(path, "\x00\n\r") {
		return fmt.Errorf("file path contains control characters")
	}

	return nil
}

// ValidateCommandArg validates a command-line argument for safety
func ValidateCommandArg(arg string) error {
	if strings.Contains(arg, "\x00") {
		return fmt.Errorf("argument contains null byte")
	}

	dangerousChars := []string{
		";", "&", "|", "`", "$", "(", ")", "<", ">", "\n", "\r",
	}

	for _, char := range dangerousChars {
		if strings.Contains(arg, char) {
			return fmt.Errorf("argument contains dangerous character: %s", char)
		}
	}

	return nil
}
