package config

type AppConfig struct {
	Hub   HubConfig
	Rules Rules
	Log   LogConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	hubCfg, err := LoadHub()
	if err != nil {
		return AppConfig{}, err
	}
	rules, err := LoadRules()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Hub:   hubCfg,
		Rules: rules,
		Log:   logCfg,
	}, nil
}
