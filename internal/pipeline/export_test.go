package pipeline

// Private option hooks exposed so tests can inject fakes for the stage
// clients without real binaries or credentials.
var (
	WithSourceClient  = withSourceClient
	WithAudioClipper  = withAudioClipper
	WithTopicAnalyzer = withTopicAnalyzer
)
