package query

import "github.com/atricence/voxdata/internal/connector"

// Connectors resolves dataset identifiers to their record store adapters.
type Connectors interface {
	Get(dataset string) (connector.Connector, error)
	Datasets() []string
}
