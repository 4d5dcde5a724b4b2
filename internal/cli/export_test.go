package cli

// Export internal functions for testing.

// SplitOptions exports splitOptions for testing.
type SplitOptions = splitOptions

var (
	RunSplit         = runSplit
	RunTracks        = runTracks
	RunCue           = runCue
	RunProbe         = runProbe
	RunConfigSet     = runConfigSet
	RunConfigGet     = runConfigGet
	RunConfigList    = runConfigList
	CheckConfigValue = checkConfigValue
	ParseInterval    = parseInterval
	AssignArgs       = assignArgs
	AutoCuePath      = autoCuePath
	ResolveOutputDir = resolveOutputDir
	PreviewLine      = previewLine
	WriteFileAtomic  = writeFileAtomic
)
