package compiler

import (
	"thirdcoast.systems/mediafetch/internal/preferences"
	"thirdcoast.systems/mediafetch/pkg/ytdlp"
)

// BuildCustomCommandPlan compiles a plan for the user's own command
// template. The template owns the output path, so no -o is emitted and the
// URLs go last.
func BuildCustomCommandPlan(urls []string, p preferences.Preferences, commandDirectory string) *ytdlp.Plan {
	b := ytdlp.NewCustomCommandBuilder(urls)

	b.Flag("--newline")
	if commandDirectory != "" {
		b.Option("-P", commandDirectory)
	}
	if p.Aria2c {
		addAria2c(b)
	}
	if p.UseDownloadArchive {
		b.MarkNeedsArchive()
	}
	if p.RestrictFilenames {
		b.Flag("--restrict-filenames")
	}
	if p.Cookies {
		addCookies(b, p)
	}
	if p.CommandTemplate != "" {
		b.SetConfigTemplate(p.CommandTemplate)
	}

	return b.Build()
}
