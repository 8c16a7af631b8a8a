// Package transports imports all built-in transports for auto-registration.
// Import this package to have all transports registered with the default registry.
package transports

import (
	// Import all transports for side-effect registration
	_ "github.com/c-fraser/connekted/transport/aws"
	_ "github.com/c-fraser/connekted/transport/channel"
	_ "github.com/c-fraser/connekted/transport/http"
	_ "github.com/c-fraser/connekted/transport/jetstream"
	_ "github.com/c-fraser/connekted/transport/kafka"
	_ "github.com/c-fraser/connekted/transport/nats"
	_ "github.com/c-fraser/connekted/transport/rabbitmq"
)
