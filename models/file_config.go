package models

// FileConfig describes a file or directory copied into a configuration home.
// When ConfigFile is set the content is treated as a template and
// @property.name@ tokens are replaced with configuration property values.
type FileConfig struct {
	File       string `json:"file" yaml:"file" validate:"required"`
	ToDir      string `json:"toDir,omitempty" yaml:"toDir,omitempty"`
	ToFile     string `json:"toFile,omitempty" yaml:"toFile,omitempty"`
	Overwrite  bool   `json:"overwrite" yaml:"overwrite"`
	ConfigFile bool   `json:"configFile" yaml:"configFile"`
}
