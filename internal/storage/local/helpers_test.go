package local

import "github.com/itchan-dev/askanon/shared/config"

func localConfig(dir string) config.Local {
	return config.Local{Path: dir, Key: config.DefaultLocalKey, PollInterval: config.DefaultPollInterval}
}
