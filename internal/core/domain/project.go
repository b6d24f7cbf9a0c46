package domain

// Project is a loaded relay.yaml: the configuration and the declared pipelines.
type Project struct {
	// Root is the directory containing the configuration file.
	Root      string
	Config    Config
	Pipelines []Pipeline
}

// Targets returns the distinct targets of the declared pipelines in declaration order.
func (p *Project) Targets() []Target {
	seen := make(map[Target]struct{}, len(p.Pipelines))
	targets := make([]Target, 0, len(p.Pipelines))
	for _, pl := range p.Pipelines {
		if _, ok := seen[pl.Target]; ok {
			continue
		}
		seen[pl.Target] = struct{}{}
		targets = append(targets, pl.Target)
	}
	return targets
}
