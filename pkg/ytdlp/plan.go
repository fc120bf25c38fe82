package ytdlp

// Kind distinguishes the two plan flavors.
type Kind int

const (
	// KindDownload is a compiled download of a single video or playlist item.
	// Its arguments end with -o <template>; the URL is supplied at execution.
	KindDownload Kind = iota
	// KindCustomCommand runs the user's own command template against a set of
	// URLs. The URLs are part of the plan and the template owns the output path.
	KindCustomCommand
)

// Download path hints understood by executors.
const (
	PathHintAudio = "audio"
	PathHintVideo = "video"
)

// Plan is an immutable, platform-neutral description of one yt-dlp
// invocation. It never contains filesystem paths for cookies or the download
// archive; it only declares that they are needed.
type Plan struct {
	kind             Kind
	options          []Option
	outputTemplate   string
	downloadPathHint string
	needsCookies     bool
	needsArchive     bool
	targets          []string
	configTemplate   string
}

// Kind reports the plan flavor.
func (p *Plan) Kind() Kind { return p.kind }

// Options returns a copy of the options in insertion order. Multi values are
// copied too, so callers cannot reach the plan's backing arrays.
func (p *Plan) Options() []Option { return cloneOptions(p.options) }

func cloneOptions(opts []Option) []Option {
	out := make([]Option, len(opts))
	for i, o := range opts {
		if m, ok := o.(Multi); ok {
			o = Multi{Key: m.Key, Values: append([]string(nil), m.Values...)}
		}
		out[i] = o
	}
	return out
}

// OutputTemplate returns the -o template (download plans only).
func (p *Plan) OutputTemplate() string { return p.outputTemplate }

// DownloadPathHint returns PathHintAudio, PathHintVideo or "".
func (p *Plan) DownloadPathHint() string { return p.downloadPathHint }

func (p *Plan) NeedsCookiesFile() bool { return p.needsCookies }
func (p *Plan) NeedsArchiveFile() bool { return p.needsArchive }

// Targets returns the URLs of a custom command plan.
func (p *Plan) Targets() []string { return append([]string(nil), p.targets...) }

// ConfigTemplate returns the raw yt-dlp configuration text of a custom
// command plan, or "".
func (p *Plan) ConfigTemplate() string { return p.configTemplate }

// Has reports whether an option with the given name is present.
func (p *Plan) Has(name string) bool {
	for _, o := range p.options {
		if o.Name() == name {
			return true
		}
	}
	return false
}

// Args flattens the options in insertion order. Download plans always end
// with -o <template>: yt-dlp lets a later -o override an earlier one.
func (p *Plan) Args() []string {
	args := make([]string, 0, len(p.options)*2+2)
	for _, o := range p.options {
		args = append(args, o.Render()...)
	}
	if p.kind == KindDownload {
		args = append(args, "-o", p.outputTemplate)
	}
	return args
}

// AsCLIArgs returns Args followed by the plan's own targets, if any.
func (p *Plan) AsCLIArgs() []string {
	return append(p.Args(), p.targets...)
}

// Builder accumulates options for a Plan. It is append-only; the caller owns
// it, calls Build once and discards it.
type Builder struct {
	// OutputTemplate is emitted as the final -o argument of a download plan.
	OutputTemplate string
	// DownloadPathHint tells executors which destination directory to use.
	DownloadPathHint string

	kind           Kind
	options        []Option
	needsCookies   bool
	needsArchive   bool
	targets        []string
	configTemplate string
}

// NewDownloadBuilder returns a builder for a download plan.
func NewDownloadBuilder() *Builder {
	return &Builder{kind: KindDownload}
}

// NewCustomCommandBuilder returns a builder for a custom command plan that
// runs against urls.
func NewCustomCommandBuilder(urls []string) *Builder {
	return &Builder{kind: KindCustomCommand, targets: append([]string(nil), urls...)}
}

// Flag appends a bare switch.
func (b *Builder) Flag(name string) *Builder {
	b.options = append(b.options, Flag{Key: name})
	return b
}

// Option appends name with its values, choosing Flag, KeyValue or Multi by arity.
func (b *Builder) Option(name string, values ...string) *Builder {
	b.options = append(b.options, NewOption(name, values...))
	return b
}

// Has reports whether an option named name was already appended.
func (b *Builder) Has(name string) bool {
	for _, o := range b.options {
		if o.Name() == name {
			return true
		}
	}
	return false
}

func (b *Builder) MarkNeedsCookies() *Builder {
	b.needsCookies = true
	return b
}

func (b *Builder) MarkNeedsArchive() *Builder {
	b.needsArchive = true
	return b
}

// SetConfigTemplate attaches raw yt-dlp configuration text to a custom
// command plan. Executors materialize it as a --config-locations file.
func (b *Builder) SetConfigTemplate(text string) *Builder {
	b.configTemplate = text
	return b
}

// Build returns the immutable Plan. Later changes to the builder do not
// affect plans already built.
func (b *Builder) Build() *Plan {
	return &Plan{
		kind:             b.kind,
		options:          cloneOptions(b.options),
		outputTemplate:   b.OutputTemplate,
		downloadPathHint: b.DownloadPathHint,
		needsCookies:     b.needsCookies,
		needsArchive:     b.needsArchive,
		targets:          append([]string(nil), b.targets...),
		configTemplate:   b.configTemplate,
	}
}
