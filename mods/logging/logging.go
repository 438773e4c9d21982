package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/robfig/cron/v3"
	"gopkg.in/natefinch/lumberjack.v2"
)

/*
	Log rotation schedule

	"0 30 * * * *"             Every hour on the half hour
	"@hourly"                  Every hour
	"@every 1h30m"             Every hour thirty

	@yearly
	@monthly
	@daily
	@hourly
	@midnight
*/

type Config struct {
	Console                     bool          `json:"console" yaml:"console"`
	Filename                    string        `json:"filename" yaml:"filename"`
	Append                      bool          `json:"append" yaml:"append"`
	RotateSchedule              string        `json:"rotateSchedule" yaml:"rotateSchedule"`
	MaxSize                     int           `json:"maxSize" yaml:"maxSize"`
	MaxBackups                  int           `json:"maxBackups" yaml:"maxBackups"`
	MaxAge                      int           `json:"maxAge" yaml:"maxAge"`
	Compress                    bool          `json:"compress" yaml:"compress"`
	Levels                      []LevelConfig `json:"levels" yaml:"levels"`
	UTC                         bool          `json:"utc" yaml:"utc"`
	DefaultPrefixWidth          int           `json:"defaultPrefixWidth" yaml:"defaultPrefixWidth"`
	DefaultEnableSourceLocation bool          `json:"defaultEnableSourceLocation" yaml:"defaultEnableSourceLocation"`
	DefaultLevel                string        `json:"defaultLevel" yaml:"defaultLevel"`
}

type LevelConfig struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Level   string `json:"level" yaml:"level"`
}

var PresetConfigStdout = Config{
	Console:            false,
	Filename:           "-",
	Append:             true,
	DefaultPrefixWidth: 24,
	DefaultLevel:       "TRACE",
}

var PresetConfigDiscard = Config{
	Console:            false,
	Filename:           ".",
	Append:             false,
	DefaultPrefixWidth: 24,
	DefaultLevel:       "TRACE",
}

var rotateCron = cron.New()

var defaultWriter []*logWriter

func Configure(cfg *Config) {
	for _, c := range cfg.Levels {
		levelConfig[c.Pattern] = ParseLogLevel(c.Level)
	}
	SetDefaultPrefixWidth(cfg.DefaultPrefixWidth)
	SetDefaultLevel(ParseLogLevel(cfg.DefaultLevel))
	SetDefaultEnableSourceLocation(cfg.DefaultEnableSourceLocation)

	if cfg.Filename == "." {
		defaultWriter = []*logWriter{}
	} else if cfg.Filename == "-" {
		defaultWriter = []*logWriter{{Writer: os.Stdout, isTerm: true}}
	} else {
		lj := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  !cfg.UTC,
		}
		if !cfg.Append {
			lj.Rotate()
		}
		if len(cfg.RotateSchedule) > 0 {
			_, err := rotateCron.AddFunc(cfg.RotateSchedule, func() {
				lj.Rotate()
			})
			if err == nil {
				go rotateCron.Run()
			} else {
				fmt.Fprintf(os.Stderr, "ERR logger rotate schedule %s", err.Error())
			}
		}
		if cfg.Console {
			defaultWriter = []*logWriter{
				{Writer: lj, isTerm: false},
				{Writer: os.Stdout, isTerm: true},
			}
		} else {
			defaultWriter = []*logWriter{{Writer: lj, isTerm: false}}
		}
	}
}

func GetLog(name string) Log {
	return &levelLogger{
		name:         name,
		level:        GetLevel(name),
		underlying:   defaultWriter,
		prefixWidth:  prefixWidthDefault,
		enableSrcLoc: enableSourceLocationDefault,
	}
}

func NewLog(name string, writer io.Writer) Log {
	return &levelLogger{
		name:        name,
		level:       GetLevel(name),
		underlying:  []*logWriter{{Writer: writer, isTerm: false}},
		prefixWidth: prefixWidthDefault,
	}
}

type logWriter struct {
	io.Writer
	isTerm bool
}
