package modules

type Module interface {
	Init(config map[string]interface{}) error
	Write(on bool) error
}

type DefaultModule struct{}

func (*DefaultModule) Init(config map[string]interface{}) error {
	return nil
}

func (*DefaultModule) Write(on bool) error {
	return nil
}
