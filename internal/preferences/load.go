package preferences

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// setDefaults registers every field of d under its mapstructure key so a
// settings file only needs to mention what it changes.
func setDefaults(v *viper.Viper, d Preferences) {
	val := reflect.ValueOf(d)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		v.SetDefault(tag, val.Field(i).Interface())
	}
}

// Load reads preferences from a settings file (JSON, YAML or TOML, by
// extension). Missing keys keep their Default values.
func Load(path string) (Preferences, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Preferences{}, fmt.Errorf("read preferences: %w", err)
	}

	p := Preferences{}
	if err := v.Unmarshal(&p); err != nil {
		return Preferences{}, fmt.Errorf("unmarshal preferences: %w", err)
	}

	if err := Validate(p); err != nil {
		return Preferences{}, err
	}

	slog.Info("Loaded preferences", "path", path, "extract_audio", p.ExtractAudio, "download_archive", p.UseDownloadArchive)
	return p, nil
}

// Validate checks the structural constraints of p. The plan compiler does not
// require valid preferences; this guards what users type into settings files.
func Validate(p Preferences) error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("validate preferences: %w", err)
	}
	return nil
}
