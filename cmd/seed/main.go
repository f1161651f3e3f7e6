// Command seed loads a small sample congregation for local testing. Records
// go through the member service, so with the API reachable they are created
// server-side and mirrored locally; offline they land in the fallback store.
package main

import (
	"context"
	"log"
	"os"

	boltkv "github.com/porters-chapel/membership-console/internal/adapters/bolt/kv"
	"github.com/porters-chapel/membership-console/internal/adapters/localstore"
	"github.com/porters-chapel/membership-console/internal/adapters/remote"
	"github.com/porters-chapel/membership-console/internal/app/members"
	platformclock "github.com/porters-chapel/membership-console/internal/platform/clock"
	"github.com/porters-chapel/membership-console/internal/platform/config"
	"github.com/porters-chapel/membership-console/internal/platform/logger"
	"github.com/porters-chapel/membership-console/internal/platform/session"
	"github.com/porters-chapel/membership-console/internal/ports/out/memberstore"
)

var sampleMembers = []memberstore.CreatePayload{
	{
		FullName:       "John Doe",
		DOB:            "1988-05-15",
		Residence:      "Accra",
		GPSAddress:     "GA-123-4567",
		PhoneNumber:    "0244123456",
		AltPhoneNumber: "0201234567",
		Nationality:    "Ghanaian",
		MaritalStatus:  "Married",
		JoiningDate:    "2020-01-15",
	},
	{
		FullName:      "Jane Smith",
		DOB:           "1995-08-22",
		Residence:     "Kumasi",
		GPSAddress:    "AK-456-7890",
		PhoneNumber:   "0554987654",
		Nationality:   "Ghanaian",
		MaritalStatus: "Single",
		JoiningDate:   "2021-03-10",
	},
	{
		FullName:       "Michael Johnson",
		DOB:            "1981-12-03",
		Residence:      "Tema",
		GPSAddress:     "GT-789-0123",
		PhoneNumber:    "0208765432",
		AltPhoneNumber: "0244567890",
		Nationality:    "Ghanaian",
		MaritalStatus:  "Divorced",
		JoiningDate:    "2019-06-20",
	},
}

func main() {
	cfg, err := config.Load(os.Getenv("MEMBERSHIP_ENV_FILE"))
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	kvStore, err := boltkv.Open(cfg.StorePath)
	if err != nil {
		log.Fatalf("open store %s: %v", cfg.StorePath, err)
	}
	defer kvStore.Close()

	clk := platformclock.NewSystemClock()
	sess := session.NewFileStore(cfg.SessionPath)
	api := remote.NewClient(remote.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.HTTPTimeout}, sess, zl)
	svc := members.NewService(api, localstore.NewStore(kvStore, clk, zl), clk, zl)

	ctx := context.Background()
	for _, payload := range sampleMembers {
		m, err := svc.CreateMember(ctx, payload)
		if err != nil {
			log.Fatalf("seed %s: %v", payload.FullName, err)
		}
		log.Printf("seeded member %s (%s)", m.ID, m.FullName)
	}
	log.Printf("seeded %d members", len(sampleMembers))
}
