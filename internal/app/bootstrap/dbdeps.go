// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// Redis is nil when redis_addr is blank. Runtime is allocated in ConnectDB
// and populated by Startup; WAFFLE passes DBDeps by value, so the pointer
// is what lets BuildHandler and Shutdown see the services Startup built.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Redis         *redis.Client
	Runtime       *Runtime
}
