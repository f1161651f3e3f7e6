package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	boltkv "github.com/porters-chapel/membership-console/internal/adapters/bolt/kv"
	"github.com/porters-chapel/membership-console/internal/adapters/localstore"
	"github.com/porters-chapel/membership-console/internal/adapters/remote"
	"github.com/porters-chapel/membership-console/internal/app/members"
	"github.com/porters-chapel/membership-console/internal/domain"
	platformclock "github.com/porters-chapel/membership-console/internal/platform/clock"
	"github.com/porters-chapel/membership-console/internal/platform/config"
	"github.com/porters-chapel/membership-console/internal/platform/logger"
	"github.com/porters-chapel/membership-console/internal/platform/session"
	"github.com/porters-chapel/membership-console/internal/ports/out/memberstore"

	"github.com/oapi-codegen/nullable"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

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

	sess := session.NewFileStore(cfg.SessionPath)
	if token, ok := sess.Token(); ok && session.TokenExpired(token, time.Now()) {
		zl.Warn("stored session token is expired; API requests may be rejected")
	}

	clk := platformclock.NewSystemClock()
	api := remote.NewClient(remote.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.HTTPTimeout}, sess, zl)
	fallback := localstore.NewStore(kvStore, clk, zl)
	svc := members.NewService(api, fallback, clk, zl)
	svc.StatsTTL = cfg.StatsTTL
	vm := members.NewViewModel(svc, zl)

	if err := run(context.Background(), vm, svc, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, vm *members.ViewModel, svc *members.Service, cmd string, args []string) error {
	switch cmd {
	case "list":
		return listCmd(ctx, vm, args, false)
	case "trash":
		return listCmd(ctx, vm, args, true)
	case "show":
		return showCmd(ctx, svc, args)
	case "add":
		return addCmd(ctx, svc, args)
	case "update":
		return updateCmd(ctx, svc, args)
	case "delete":
		return mutateCmd(ctx, vm, args, false, vm.DeleteMember)
	case "restore":
		return mutateCmd(ctx, vm, args, true, vm.RestoreMember)
	case "purge":
		return mutateCmd(ctx, vm, args, true, vm.PermanentlyDeleteMember)
	case "stats":
		return statsCmd(ctx, svc)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func listCmd(ctx context.Context, vm *members.ViewModel, args []string, trash bool) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	search := fs.String("search", "", "match name, phone or residence")
	status := fs.String("status", "", "filter by marital status")
	minAge := fs.Int("min-age", 0, "minimum age")
	maxAge := fs.Int("max-age", 0, "maximum age")
	if err := fs.Parse(args); err != nil {
		return err
	}

	patch := members.FilterPatch{Trash: nullable.NewNullableWithValue(trash)}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "search":
			patch.Search = nullable.NewNullableWithValue(*search)
		case "status":
			patch.MaritalStatus = nullable.NewNullableWithValue(*status)
		case "min-age":
			patch.MinAge = nullable.NewNullableWithValue(*minAge)
		case "max-age":
			patch.MaxAge = nullable.NewNullableWithValue(*maxAge)
		}
	})

	if err := vm.SetFilters(ctx, patch); err != nil && vm.Err() != "" {
		return fmt.Errorf("%s", vm.Err())
	}
	printMembers(vm.Members(), trash)
	return nil
}

func showCmd(ctx context.Context, svc *members.Service, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	id := fs.String("id", "", "member id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("show: -id is required")
	}
	m, err := svc.FetchMember(ctx, *id)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func addCmd(ctx context.Context, svc *members.Service, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	file := fs.String("file", "", "JSON file with the member payload")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("add: -file is required")
	}
	raw, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	var payload memberstore.CreatePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode %s: %w", *file, err)
	}
	m, err := svc.CreateMember(ctx, payload)
	if err != nil {
		return err
	}
	fmt.Printf("created member %s (%s)\n", m.ID, m.FullName)
	return nil
}

func updateCmd(ctx context.Context, svc *members.Service, args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	id := fs.String("id", "", "member id")
	file := fs.String("file", "", "JSON file with the fields to change")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *file == "" {
		return fmt.Errorf("update: -id and -file are required")
	}
	raw, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	var patch memberstore.UpdatePatch
	if err := json.Unmarshal(raw, &patch); err != nil {
		return fmt.Errorf("decode %s: %w", *file, err)
	}
	m, err := svc.UpdateMember(ctx, *id, patch)
	if err != nil {
		return err
	}
	fmt.Printf("updated member %s (%s)\n", m.ID, m.FullName)
	return nil
}

func mutateCmd(ctx context.Context, vm *members.ViewModel, args []string, trash bool, op func(context.Context, string) error) error {
	fs := flag.NewFlagSet("mutate", flag.ExitOnError)
	id := fs.String("id", "", "member id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("-id is required")
	}
	if err := vm.SetFilters(ctx, members.FilterPatch{Trash: nullable.NewNullableWithValue(trash)}); err != nil && vm.Err() != "" {
		return fmt.Errorf("%s", vm.Err())
	}
	if err := op(ctx, *id); err != nil {
		return err
	}
	printMembers(vm.Members(), trash)
	return nil
}

func statsCmd(ctx context.Context, svc *members.Service) error {
	st, err := svc.FetchStats(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "total\t%d\n", st.Total)
	fmt.Fprintf(w, "kids (0-18)\t%d\n", st.Kids)
	fmt.Fprintf(w, "adults (19+)\t%d\n", st.Adults)
	fmt.Fprintf(w, "singles\t%d\n", st.Singles)
	fmt.Fprintf(w, "married\t%d\n", st.Married)
	fmt.Fprintf(w, "widows\t%d\n", st.Widows)
	return w.Flush()
}

func printMembers(ms []domain.Member, trash bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if trash {
		fmt.Fprintln(w, "ID\tNAME\tAGE\tPHONE\tRESIDENCE\tSTATUS\tDELETED")
	} else {
		fmt.Fprintln(w, "ID\tNAME\tAGE\tPHONE\tRESIDENCE\tSTATUS\tJOINED")
	}
	for _, m := range ms {
		last := m.JoiningDate
		if trash && m.DeletedAt != nil {
			last = *m.DeletedAt
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			m.ID, m.FullName, m.Age, m.PhoneNumber, m.Residence, m.MaritalStatus, last)
	}
	_ = w.Flush()
	fmt.Printf("%d member(s)\n", len(ms))
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: console <command> [flags]

commands:
  list     list active members (-search, -status, -min-age, -max-age)
  trash    list soft-deleted members
  show     print one member (-id)
  add      register a member from a JSON payload (-file)
  update   change member fields from a JSON payload (-id, -file)
  delete   move a member to trash (-id)
  restore  recover a member from trash (-id)
  purge    permanently delete a trashed member (-id)
  stats    print congregation statistics`)
}
