// Package summary renders the human-readable reports the CLI prints after
// each operation: install plans, drift reports, search results, registry
// and profile listings.
package summary

import (
	"fmt"
	"io"

	"github.com/ocx-dev/ocx/internal/core/domain"
	"github.com/ocx-dev/ocx/internal/ui/style"
)

// Plan prints the ordered install plan before it is applied.
func Plan(w io.Writer, plan domain.Plan) {
	if len(plan.Entries) == 0 {
		fmt.Fprintln(w, style.Muted.Render("nothing to install"))
		return
	}

	fmt.Fprintln(w, style.Header.Render(fmt.Sprintf("Plan (%d components)", len(plan.Entries))))
	for _, entry := range plan.Entries {
		fmt.Fprintf(w, "  %s %s %s %s\n",
			style.Accent.Render(style.Plus),
			entry.ID.String(),
			style.Muted.Render(entry.Version),
			style.Muted.Render(string(entry.Manifest.Type)))
	}
}

// Installed prints the lock entries produced by an install or update.
func Installed(w io.Writer, entries []domain.LockEntry) {
	for _, entry := range entries {
		fmt.Fprintf(w, "%s %s %s %s\n",
			style.Success.Render(style.Check),
			entry.ComponentID,
			style.Muted.Render(entry.Version),
			style.Muted.Render(fmt.Sprintf("(%d files)", len(entry.InstalledFiles))))
	}
}

// Drift prints a drift report. An empty report prints the clean state.
func Drift(w io.Writer, drifts []domain.Drift) {
	if len(drifts) == 0 {
		fmt.Fprintf(w, "%s no drift detected\n", style.Success.Render(style.Check))
		return
	}

	fmt.Fprintln(w, style.Header.Render(fmt.Sprintf("Drift (%d paths)", len(drifts))))
	for _, d := range drifts {
		var marker string
		switch d.Kind {
		case domain.DriftAdded:
			marker = style.Changed.Render(style.Plus)
		case domain.DriftMissing:
			marker = style.Failure.Render(style.Minus)
		case domain.DriftModified:
			marker = style.Changed.Render(style.Tilde)
		}
		fmt.Fprintf(w, "  %s %s %s %s\n",
			marker, d.Path, style.Muted.Render(string(d.Kind)), style.Muted.Render(d.ComponentID))
	}
}

// Search prints search results grouped as returned, one line per component.
func Search(w io.Writer, results []domain.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, style.Muted.Render("no components found"))
		return
	}

	for _, r := range results {
		installed := ""
		if r.Installed {
			installed = " " + style.Success.Render("[installed]")
		}
		fmt.Fprintf(w, "%s %s%s\n",
			style.Accent.Render(r.Registry+"/"+r.Summary.Name),
			style.Muted.Render(fmt.Sprintf("%s %s", r.Summary.Type, r.Summary.LatestVersion)),
			installed)
		if r.Summary.Description != "" {
			fmt.Fprintf(w, "  %s\n", style.Muted.Render(r.Summary.Description))
		}
	}
}

// Registries prints the configured registries in priority order.
func Registries(w io.Writer, registries []domain.Registry, locked bool) {
	if locked {
		fmt.Fprintln(w, style.Muted.Render("registries are locked by project configuration"))
	}
	if len(registries) == 0 {
		fmt.Fprintln(w, style.Muted.Render("no registries configured"))
		return
	}
	for i, reg := range registries {
		pin := ""
		if reg.PinnedVersion != "" {
			pin = " " + style.Changed.Render("pinned "+reg.PinnedVersion)
		}
		fmt.Fprintf(w, "%2d. %s %s%s\n",
			i+1, style.Accent.Render(reg.Name), style.Muted.Render(reg.BaseURL), pin)
	}
}

// Profiles prints the profile names, marking the current one.
func Profiles(w io.Writer, names []string, current string) {
	if len(names) == 0 {
		fmt.Fprintln(w, style.Muted.Render("no profiles"))
		return
	}
	for _, name := range names {
		marker := " "
		if name == current {
			marker = style.Success.Render(style.Dot)
		}
		fmt.Fprintf(w, "%s %s\n", marker, name)
	}
}

// Profile prints one resolved profile together with how it was selected.
func Profile(w io.Writer, p domain.Profile, source domain.ProfileSource) {
	fmt.Fprintf(w, "%s %s\n", style.Header.Render(p.Name), style.Muted.Render("("+string(source)+")"))
	fmt.Fprintf(w, "  componentPath: %s\n", p.ComponentPath)
	for _, reg := range p.Registries {
		fmt.Fprintf(w, "  registry: %s %s\n", reg.Name, style.Muted.Render(reg.BaseURL))
	}
	for _, pattern := range p.Include {
		fmt.Fprintf(w, "  include: %s\n", pattern)
	}
	for _, pattern := range p.Exclude {
		fmt.Fprintf(w, "  exclude: %s\n", pattern)
	}
	if p.MaxFiles > 0 {
		fmt.Fprintf(w, "  maxFiles: %d\n", p.MaxFiles)
	}
}
