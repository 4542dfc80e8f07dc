package config

type Routes struct {
	LoginPath string `env:"LOGIN_PATH" envDefault:"/login"`
	ErrorPath string `env:"ERROR_PATH" envDefault:"/error"`
}

var _ RoutesConfig = Routes{}

// GetLoginPath is where a validated authorization request continues to collect the user's proof.
func (r Routes) GetLoginPath() string {
	return r.LoginPath
}

func (r Routes) GetErrorPath() string {
	return r.ErrorPath
}
