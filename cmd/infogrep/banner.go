package infogrep

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

const logo = `  _        __
 (_)_ __  / _| ___   __ _ _ __ ___ _ __
 | | '_ \| |_ / _ \ / _' | '__/ _ \ '_ \
 | | | | |  _| (_) | (_| | | |  __/ |_) |
 |_|_| |_|_|  \___/ \__, |_|  \___| .__/
                    |___/         |_|`

var (
	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)

	taglineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			PaddingLeft(1)
)

// printBanner writes the logo and version line. Styling is skipped when
// colors is false.
func printBanner(w io.Writer, colors bool) {
	tagline := fmt.Sprintf("v%s  secrets and PII in any file", version)
	if !colors {
		fmt.Fprintf(w, "%s\n %s\n\n", logo, tagline)
		return
	}
	fmt.Fprintf(w, "%s\n%s\n\n", logoStyle.Render(logo), taglineStyle.Render(tagline))
}
