// Package match turns a parsed query and the live tmux state into the list of
// candidate actions shown to the user.
package match

import (
	"slices"
	"strings"

	"github.com/timvw/tmux-runner/internal/config"
	"github.com/timvw/tmux-runner/internal/model"
	"github.com/timvw/tmux-runner/internal/paths"
	"github.com/timvw/tmux-runner/internal/query"
)

const (
	// ProjectAttachRelevance ranks a running project just below creating one.
	ProjectAttachRelevance = 0.99

	// MinRelevance is the score of candidates that must rank last. Relevance
	// stays strictly positive.
	MinRelevance = 0.001
)

// Result is the outcome of one match cycle.
type Result struct {
	// Matches are in display order; they are not sorted.
	Matches []model.Match
	// ExactMatch is set when a live session name equals the attach key.
	ExactMatch bool
}

// QueryOptions derives parser options for one match cycle. Project mode is
// only available when the session manager reported projects.
func QueryOptions(snap config.Snapshot, projects []string) query.Options {
	return query.Options{
		FlagsEnabled:   snap.EnableFlags,
		SubtoolEnabled: snap.EnableSubtool && len(projects) > 0,
		SubtoolTrigger: snap.Subtool.Trigger,
		FlagAliases:    snap.FlagAliases,
	}
}

// Compute runs the project, attach and new-session passes in that order.
// It reads only its arguments and is safe for concurrent use.
//
// A query parsed in project mode while project mode is unavailable (the
// feature is off or there are no projects) is parsed again without it, so
// the trigger word is matched as an ordinary name.
func Compute(p query.Parsed, sessions, projects []string, snap config.Snapshot) Result {
	var res Result

	opts := QueryOptions(snap, projects)
	if p.SubtoolMode && !opts.SubtoolEnabled {
		p = query.Parse(p.Term, opts)
	}

	program := p.TerminalOverride
	if program == "" {
		program = snap.DefaultProgram
	}

	var attached []string
	if p.SubtoolMode {
		label := snap.Subtool.Label
		for _, proj := range projects {
			if !strings.HasPrefix(proj, p.SubtoolFilter) {
				continue
			}
			if slices.Contains(sessions, proj) {
				attached = append(attached, proj)
				res.Matches = append(res.Matches, model.Match{
					Text:      "Attach " + label + "  " + proj + p.FlagSuffix,
					Relevance: ProjectAttachRelevance,
					Action:    model.ActionAttach,
					Target:    proj,
					Program:   program,
				})
				continue
			}
			res.Matches = append(res.Matches, model.Match{
				Text:        "Create " + label + "  " + proj + p.FlagSuffix,
				Relevance:   1,
				Action:      model.ActionNewViaSubtool,
				Target:      proj,
				Program:     program,
				SubtoolArgs: p.SubtoolArgs,
			})
		}
	}

	// An empty key lists every session.
	key := query.FirstToken(p.FilterText)
	for _, s := range sessions {
		if !strings.HasPrefix(s, key) {
			continue
		}
		if s == key {
			res.ExactMatch = true
		}
		if slices.Contains(attached, s) {
			continue
		}
		res.Matches = append(res.Matches, model.Match{
			Text:      "Attach to " + s + p.FlagSuffix,
			Relevance: attachRelevance(key, s),
			Action:    model.ActionAttach,
			Target:    s,
			Program:   program,
		})
	}

	if res.ExactMatch || (len(res.Matches) > 0 && !snap.EnableNewSessionByPartialMatch) {
		return res
	}
	if p.Name == "" && p.SubtoolMode {
		return res
	}

	relevance := 1.0
	if len(res.Matches) > 0 {
		relevance = MinRelevance
	}
	m := model.Match{
		Text:      "New session " + p.Name + p.FlagSuffix,
		Relevance: relevance,
		Action:    model.ActionNewSession,
		Target:    p.Name,
		Program:   program,
	}
	if p.PathSuffix != "" {
		m.Text = "New session " + p.Name + " in " + p.PathSuffix + p.FlagSuffix
		m.Path = paths.NewResolver(snap).Resolve(p.PathSuffix)
	}
	res.Matches = append(res.Matches, m)
	return res
}

func attachRelevance(key, session string) float64 {
	if len(session) == 0 {
		return 1
	}
	r := float64(len(key)) / float64(len(session))
	if r < MinRelevance {
		return MinRelevance
	}
	return r
}
