package board

import (
	_ "embed"
	"fmt"
	"time"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/BeatGlow/gpios/logging"
)

//go:embed boards.yaml
var rawBoards []byte

var boards []Config

// Config describes the peripheral bindings of one board.
type Config struct {
	Name     string  `yaml:"name"`
	LED      LED     `yaml:"led"`
	Button   Button  `yaml:"button"`
	I2C      I2C     `yaml:"i2c"`
	Display  Display `yaml:"display"`
	Blink    string  `yaml:"blink"`
	LogLevel string  `yaml:"log_level"`
	Serial   Serial  `yaml:"serial"`
}

// LED is an active-high digital output.
type LED struct {
	Pin     string `yaml:"pin"`
	Initial string `yaml:"initial"`
	// Slew is the output drive speed. Host GPIO cannot set it; it is kept
	// for reference.
	Slew string `yaml:"slew"`
}

// Button is an input with pull-up and both-edge detection.
type Button struct {
	Pin  string `yaml:"pin"`
	Name string `yaml:"name"`
}

// I2C is the two-wire bus the display hangs off.
type I2C struct {
	Bus   string `yaml:"bus"`
	SCL   string `yaml:"scl"`
	SDA   string `yaml:"sda"`
	Speed string `yaml:"speed"`
}

// Point is a pixel coordinate.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Display describes the OLED and the banner shown on it at boot.
type Display struct {
	Controller string `yaml:"controller"`
	Address    uint16 `yaml:"address"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Rotation   int    `yaml:"rotation"`
	Text       string `yaml:"text"`
	Origin     Point  `yaml:"origin"`
	Font       string `yaml:"font"`
}

// Serial is an optional debug port for the diagnostic stream.
type Serial struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// Boards returns every board in the embedded table.
func Boards() []Config {
	return slices.Clone(boards)
}

// Load returns the named board.
func Load(name string) (Config, error) {
	i := slices.IndexFunc(boards, func(c Config) bool { return c.Name == name })
	if i < 0 {
		return Config{}, fmt.Errorf("board: unknown board %q", name)
	}
	return boards[i], nil
}

// InitialLevel returns the level the LED is driven to when taken.
func (c LED) InitialLevel() gpio.Level {
	return c.Initial != "low"
}

// Frequency returns the bus clock, zero when unset.
func (c I2C) Frequency() (physic.Frequency, error) {
	var f physic.Frequency
	if c.Speed == "" {
		return 0, nil
	}
	if err := f.Set(c.Speed); err != nil {
		return 0, fmt.Errorf("board: invalid I²C speed %q: %w", c.Speed, err)
	}
	return f, nil
}

// BlinkInterval returns the LED toggle interval, zero when unset.
func (c Config) BlinkInterval() (time.Duration, error) {
	if c.Blink == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Blink)
	if err != nil {
		return 0, fmt.Errorf("board: invalid blink interval %q: %w", c.Blink, err)
	}
	return d, nil
}

// Level returns the minimum diagnostic level.
func (c Config) Level() (logging.Level, error) {
	return logging.ParseLevel(c.LogLevel)
}

func init() {
	var t struct {
		Elements []Config `yaml:"boards"`
	}
	if err := yaml.Unmarshal(rawBoards, &t); err != nil {
		panic(err)
	}
	boards = t.Elements
}
