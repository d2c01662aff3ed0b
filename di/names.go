package di

// CoreNames are the keys of the process-level singletons bootstrap registers.
type CoreNames struct {
	Config     string
	Properties string
	Logger     string
	Engine     string
}

// Core holds the process-level keys.
var Core = CoreNames{
	Config:     "config",
	Properties: "properties",
	Logger:     "logger",
	Engine:     "autoconfig_engine",
}
