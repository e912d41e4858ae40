package builder

// Options configures a single Build call.
type Options struct {
	// WorkDir is the directory Build writes the generated Dockerfile,
	// .dockerignore, and manifest.json into before tarring it as the
	// build context.
	WorkDir string
	// Tags are applied to the resulting image; all of them are passed
	// to the daemon's build call, which applies them.
	Tags []string
	// NoCache disables the daemon's layer cache.
	NoCache bool
	// BuildArgs are passed through verbatim as Docker build-args.
	BuildArgs map[string]string
	// LogDir receives the raw, ANSI-stripped daemon log for this build;
	// "" disables log-file writing.
	LogDir string
	// OnProgress, if set, receives every classified event as it streams
	// in, in daemon order.
	OnProgress func(ProgressEvent)
}

// EventType classifies one line of the daemon's build response stream.
type EventType string

const (
	EventStep     EventType = "step"
	EventDownload EventType = "download"
	EventError    EventType = "error"
	EventComplete EventType = "complete"
	EventLog      EventType = "log"
)

// ProgressEvent is one classified unit of daemon build output.
type ProgressEvent struct {
	Type        EventType
	Message     string
	Step        int
	TotalSteps  int
	Instruction string
	Current     int64
	Total       int64
}

// Artifact is the result of a successful build.
type Artifact struct {
	// BuildID is a per-invocation UUID, independent of the resulting
	// ImageID; it is also attached as a field to the builder's own log
	// entries for this build.
	BuildID   string
	ImageID   string
	Tags      []string
	BuildTime float64 // seconds
	ImageSize int64
	LogFile   string
}
