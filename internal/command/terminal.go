package command

// Kind is a terminal emulator family with its own argument layout.
type Kind int

const (
	// KindGeneric covers konsole and any terminal that understands "-e cmd...".
	KindGeneric Kind = iota
	KindYakuake
	KindTerminator
	KindST
	// KindCustom takes its program and arguments from the user's config.
	KindCustom
)

// Terminal ids as they appear in config and flag aliases.
const (
	IDKonsole    = "konsole"
	IDYakuake    = "yakuake-session"
	IDTerminator = "terminator"
	IDST         = "st"
	IDCustom     = "custom"
)

var kindByID = map[string]Kind{
	IDYakuake:    KindYakuake,
	IDTerminator: KindTerminator,
	IDST:         KindST,
	IDCustom:     KindCustom,
}

// KindOf maps a terminal id to its Kind. Unknown ids are generic.
func KindOf(id string) Kind {
	if k, ok := kindByID[id]; ok {
		return k
	}
	return KindGeneric
}

func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindYakuake:
		return "yakuake"
	case KindTerminator:
		return "terminator"
	case KindST:
		return "st"
	case KindCustom:
		return "custom"
	}
	return "unknown"
}

// targetArg is replaced by the session name when a template is expanded.
const targetArg = "\x00target"

type template struct {
	attach []string
	create []string
}

// templates holds the built-in layouts. KindCustom has no entry; its
// templates come from config.
var templates = map[Kind]template{
	KindYakuake: {
		attach: []string{"-t", targetArg, "-e", "tmux", "attach-session", "-t", targetArg},
		create: []string{"-t", targetArg, "-e", "tmux", "new-session", "-s", targetArg},
	},
	KindTerminator: {
		attach: []string{"-x", "tmux", "a", "-t", targetArg},
		create: []string{"-x", "tmux", "new-session", "-s", targetArg},
	},
	KindST: {
		attach: []string{"tmux", "attach-session", "-t", targetArg},
		create: []string{"tmux", "new-session", "-s", targetArg},
	},
	KindGeneric: {
		attach: []string{"-e", "tmux", "a", "-t", targetArg},
		create: []string{"-e", "tmux", "new-session", "-s", targetArg},
	},
}

func expand(tmpl []string, target string) []string {
	out := make([]string, len(tmpl))
	for i, a := range tmpl {
		if a == targetArg {
			a = target
		}
		out[i] = a
	}
	return out
}
