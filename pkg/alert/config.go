package alert

// Config is the user-editable configuration of one alert slot.
type Config struct {
	ChatEnabled bool   `yaml:"chat_enabled" json:"chat_enabled"`
	ChatFormat  string `yaml:"chat_format" json:"chat_format"`

	SoundEnabled bool    `yaml:"sound_enabled" json:"sound_enabled"`
	SoundFile    string  `yaml:"sound_file" json:"sound_file"`
	SoundVolume  float64 `yaml:"sound_volume" json:"sound_volume"`
}

// soundChanged reports whether switching from c to next invalidates a
// decoded sound handle.
func (c Config) soundChanged(next Config) bool {
	return c.SoundEnabled != next.SoundEnabled ||
		c.SoundFile != next.SoundFile ||
		c.SoundVolume != next.SoundVolume
}
