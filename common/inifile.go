package common

import (
	"errors"
	"io"
	"os"
	"path"

	ini "github.com/lars-t-hansen/ini"
)

// Defaults for command line options come from $HOME/.pairdist, if it exists.  Options given on the
// command line always win.

// MT: Constant after initialization
var (
	p                = ini.NewParser()
	store            *ini.Store
	inputSection     = p.AddSection("input")
	InputFile        = inputSection.AddString("file")
	storeSection     = p.AddSection("store")
	StoreHistoryDir  = storeSection.AddString("history-dir")
	StoreDatabaseURI = storeSection.AddString("database-uri")
	StoreKafkaBroker = storeSection.AddString("kafka-broker")
	StoreKafkaTopic  = storeSection.AddString("kafka-topic")
	daemonSection    = p.AddSection("daemon")
	DaemonPort       = daemonSection.AddString("port")
)

const configFilename = ".pairdist"

func init() {
	home := os.Getenv("HOME")
	if home == "" {
		return
	}
	fn := path.Join(path.Clean(home), configFilename)
	input, err := os.Open(fn)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			Log.Errorf("Error in trying to open %s: %s", fn, err.Error())
		}
		return
	}
	defer input.Close()
	if err := LoadConfig(input); err != nil {
		Log.Errorf("Error in trying to parse %s: %s", fn, err.Error())
	}
}

// Replace the current defaults with the contents of `input`.  On error the defaults are cleared.
func LoadConfig(input io.Reader) error {
	s, err := p.Parse(input)
	if err != nil {
		store = nil
		return err
	}
	store = s
	return nil
}

// If *sp is empty and the config has a value for f, store the env-expanded value in *sp and return
// true.
func ApplyDefault(sp *string, f *ini.Field) bool {
	if *sp != "" || store == nil || !f.Present(store) {
		return false
	}
	*sp = os.ExpandEnv(f.StringVal(store))
	return true
}
