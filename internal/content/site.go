package content

// Site holds the settings from site.yaml.
type Site struct {
	Name     string   `yaml:"name"`
	Tagline  string   `yaml:"tagline"`
	Email    string   `yaml:"email"`
	Owner    string   `yaml:"owner"` // highlighted in author lists, defaults to Name
	BaseURL  string   `yaml:"base_url"`
	Photo    string   `yaml:"photo"`
	HomeNews int      `yaml:"home_news"`
	Socials  []Social `yaml:"socials"`
}

type Social struct {
	Label string `yaml:"label"`
	Link  string `yaml:"link"`
}

const defaultHomeNews = 5

func (s *Site) applyDefaults() {
	if s.Owner == "" {
		s.Owner = s.Name
	}
	if s.HomeNews <= 0 {
		s.HomeNews = defaultHomeNews
	}
}

func parseSite(file string, raw []byte) (Site, error) {
	var s Site
	if err := decodeYAML("site", file, raw, &s); err != nil {
		return Site{}, err
	}
	s.applyDefaults()
	return s, nil
}
