package version

import (
	"fmt"
	"log"
	"strings"

	"github.com/thushan/llamadeck/theme"
)

var (
	Name        = "llamadeck"
	ShortName   = "llamadeck"
	Authors     = "Thushan Fernando"
	Description = "Control panel tooling for llama.cpp servers"
	Version     = "v0.0.1"
	Commit      = "none"
	Date        = "nowish"
	User        = "local"
)

const (
	GithubHomeText  = "github.com/thushan/llamadeck"
	GithubHomeUri   = "https://github.com/thushan/llamadeck"
	GithubLatestUri = "https://github.com/thushan/llamadeck/releases/latest"
)

// UserAgent is sent by every outbound client request
func UserAgent() string {
	return fmt.Sprintf("%s/%s", ShortName, Version)
}

func PrintVersionInfo(extendedInfo bool, vlog *log.Logger) {
	githubUri := theme.Hyperlink(GithubHomeUri, GithubHomeText)
	latestUri := theme.Hyperlink(GithubLatestUri, Version)

	var b strings.Builder

	b.WriteString(theme.ColourSplash(`
╭──────────────────────────────────────────────╮
│  ╻  ╻  ┏━┓┏┳┓┏━┓╺┳┓┏━╸┏━╸╻┏                   │
│  ┃  ┃  ┣━┫┃┃┃┣━┫ ┃┃┣╸ ┃  ┣┻┓                  │
│  ┗━╸┗━╸╹ ╹╹ ╹╹ ╹╺┻┛┗━╸┗━╸╹ ╹                  │` + "\n"))
	b.WriteString(theme.ColourSplash("│  "))
	b.WriteString(theme.StyleUrl(githubUri))
	b.WriteString(" ")
	b.WriteString(theme.ColourVersion(latestUri))
	b.WriteString("\n")
	b.WriteString(theme.ColourSplash("╰──────────────────────────────────────────────╯"))

	if extendedInfo {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(" Commit: %s\n", Commit))
		b.WriteString(fmt.Sprintf("  Built: %s\n", Date))
		b.WriteString(fmt.Sprintf("  Using: %s\n", User))
	}

	vlog.Println(b.String())
}
