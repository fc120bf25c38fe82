package ytdlp

// Option is a single command-line unit handed to yt-dlp: a bare flag, a key
// with one value, or a key with several values. Options are values; Render
// never modifies the receiver.
type Option interface {
	// Name returns the option key, e.g. "-S" or "--no-playlist".
	Name() string
	// Render returns the key followed by its values in declaration order.
	Render() []string

	isOption()
}

// Flag is a bare switch such as --no-playlist.
type Flag struct {
	Key string
}

// KeyValue is a key followed by exactly one value, e.g. -S res:1080.
type KeyValue struct {
	Key   string
	Value string
}

// Multi is a key followed by several values, e.g.
// --replace-in-metadata title .+ "New Title".
type Multi struct {
	Key    string
	Values []string
}

func (f Flag) Name() string     { return f.Key }
func (f Flag) Render() []string { return []string{f.Key} }
func (Flag) isOption()          {}

func (kv KeyValue) Name() string     { return kv.Key }
func (kv KeyValue) Render() []string { return []string{kv.Key, kv.Value} }
func (KeyValue) isOption()           {}

func (m Multi) Name() string { return m.Key }

func (m Multi) Render() []string {
	out := make([]string, 0, len(m.Values)+1)
	out = append(out, m.Key)
	return append(out, m.Values...)
}

func (Multi) isOption() {}

// NewOption picks the Option variant matching the number of values.
func NewOption(name string, values ...string) Option {
	switch len(values) {
	case 0:
		return Flag{Key: name}
	case 1:
		return KeyValue{Key: name, Value: values[0]}
	default:
		return Multi{Key: name, Values: append([]string(nil), values...)}
	}
}
