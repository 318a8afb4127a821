// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shared

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// CLI style colors using lipgloss
var (
	// StatusOK styles success indicators
	StatusOK = lipgloss.NewStyle().Foreground(lipgloss.Color("42")) // green

	// StatusWarn styles warning indicators
	StatusWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // orange

	// StatusError styles error indicators
	StatusError = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red

	// Muted styles secondary/less important text
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray

	// Bold styles emphasized text
	Bold = lipgloss.NewStyle().Bold(true)

	// Header styles section headers
	Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")) // blue bold
)

// Symbols for status indicators
const (
	SymbolOK    = "✓"
	SymbolWarn  = "⚠"
	SymbolError = "✗"
)

// stdoutIsTerminal gates styling: piped output stays plain.
var stdoutIsTerminal = term.IsTerminal(int(os.Stdout.Fd()))

// render applies the style only when stdout is a terminal.
func render(style lipgloss.Style, s string) string {
	if !stdoutIsTerminal {
		return s
	}
	return style.Render(s)
}

// RenderOK renders a success message with a green checkmark.
func RenderOK(msg string) string {
	return render(StatusOK, SymbolOK) + " " + msg
}

// RenderWarn renders a warning message with an orange symbol.
func RenderWarn(msg string) string {
	return render(StatusWarn, SymbolWarn) + " " + msg
}

// RenderError renders an error message with a red X.
func RenderError(msg string) string {
	return render(StatusError, SymbolError) + " " + msg
}

// RenderMuted renders dim secondary text.
func RenderMuted(msg string) string {
	return render(Muted, msg)
}

// RenderHeader renders a section header.
func RenderHeader(msg string) string {
	return render(Header, msg)
}

// RenderBold renders emphasized text.
func RenderBold(msg string) string {
	return render(Bold, msg)
}
