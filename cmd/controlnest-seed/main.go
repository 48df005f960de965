package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"controlnest-backend/config"
	"controlnest-backend/internal/db"
	"controlnest-backend/internal/logging"
	"controlnest-backend/internal/service"
	"controlnest-backend/internal/store"
)

var (
	configPath  string
	devicesEach int
)

var seedCmd = &cobra.Command{
	Use:   "controlnest-seed",
	Short: "Populate the ControlNest database with sample users, locations and devices",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "path to the YAML configuration file")
	seedCmd.Flags().IntVar(&devicesEach, "devices", 1, "devices to create per location")
}

func main() {
	if err := seedCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return err
	}
	s := store.NewGormStore(gormDB)

	return seed(cmd.Context(), s, devicesEach)
}

type sampleUser struct {
	name, email, password string
}

type sampleLocation struct {
	name, address, phone string
}

var sampleUsers = []sampleUser{
	{name: "Ada Admin", email: "ada@controlnest.example", password: "changeme"},
	{name: "Grace Operator", email: "grace@controlnest.example", password: "changeme"},
	{name: "Linus Technician", email: "linus@controlnest.example", password: "changeme"},
}

var sampleLocations = []sampleLocation{
	{name: "Head Office", address: "1 Harbour Road", phone: "555-0100"},
	{name: "Warehouse", address: "42 Depot Lane", phone: "555-0101"},
	{name: "Storefront", address: "7 Market Street", phone: "555-0102"},
}

var (
	deviceTypes    = []string{"pos", "kiosk", "signage"}
	deviceStatuses = []string{"active", "inactive"}
)

// seed creates the sample users that do not exist yet. Locations and devices
// are only added to a database without locations.
func seed(ctx context.Context, s store.Store, devicesPerLocation int) error {
	users := service.NewUserService(s, nil)
	locations := service.NewLocationService(s)
	devices := service.NewDeviceService(s, nil, nil)

	for _, u := range sampleUsers {
		existing, err := users.GetByEmail(ctx, u.email)
		if err != nil {
			return err
		}
		if existing != nil {
			logging.Info().Str("email", u.email).Msg("user exists, skipping")
			continue
		}
		if _, err := users.Create(ctx, service.CreateUserInput{Name: u.name, Email: u.email, Password: u.password}); err != nil {
			return err
		}
		logging.Info().Str("email", u.email).Msg("user created")
	}

	existing, err := locations.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logging.Info().Int("locations", len(existing)).Msg("locations present, skipping locations and devices")
		return nil
	}

	owners, err := users.List(ctx)
	if err != nil {
		return err
	}
	if len(owners) == 0 {
		return fmt.Errorf("no users to own the sample locations")
	}

	for i, l := range sampleLocations {
		loc, err := locations.Create(ctx, owners[i%len(owners)].ID, service.CreateLocationInput{
			Name:    l.name,
			Address: l.address,
			Phone:   l.phone,
		})
		if err != nil {
			return err
		}

		for j := 0; j < devicesPerLocation; j++ {
			d, err := devices.Create(ctx, service.CreateDeviceInput{
				LocationID: loc.ID,
				Type:       deviceTypes[rand.IntN(len(deviceTypes))],
				Status:     deviceStatuses[rand.IntN(len(deviceStatuses))],
			})
			if err != nil {
				return err
			}
			logging.Debug().Str("serial", d.SerialNumber).Str("location", loc.Name).Msg("device created")
		}
	}

	logging.Info().Int("locations", len(sampleLocations)).Msg("sample data seeded")
	return nil
}
