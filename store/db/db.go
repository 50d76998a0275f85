package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/venuebook/internal/profile"
	"github.com/hrygo/venuebook/store"
	"github.com/hrygo/venuebook/store/db/memory"
	"github.com/hrygo/venuebook/store/db/postgres"
	"github.com/hrygo/venuebook/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
//
// postgres is the production driver, sqlite covers single-node installs and
// memory is for development and tests.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	case "memory":
		driver = memory.NewDB()
	default:
		return nil, errors.Errorf("unknown db driver %q: supported drivers are postgres, sqlite and memory", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
