package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/kymanga/vifaa/core"
	"github.com/kymanga/vifaa/core/inventory"
	"github.com/kymanga/vifaa/storage/apiclient"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf     *core.Config
	out      io.Writer
	notifier core.Notifier
	logger   core.Logger
	api      inventory.API // set for demo mode and tests; nil means real backend
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage: invctl [-demo] COMMAND [OPTIONS]")
	fmt.Fprintln(cli.out, "  list [-kind KIND] [-location ID] [-category ID] [-status STATUS] [-search TEXT] - list inventory items")
	fmt.Fprintln(cli.out, "  summary [-kind KIND] [-location ID] [-category ID] [-status STATUS]            - show inventory aggregates")
	fmt.Fprintln(cli.out, "  export [-out FILE] [-kind KIND] [-location ID] [-category ID] [-status STATUS] - download the inventory report")
	fmt.Fprintln(cli.out, "  certificate -id ID [-out FILE]                                                 - download an item's ownership certificate")
	fmt.Fprintln(cli.out, "  delete -id ID                                                                  - delete an inventory item")
}

func (cli *commandLine) run(args []string) error {
	if len(args) > 1 && args[1] == "-demo" {
		cli.api = newDemoAPI()
		args = append(args[:1], args[2:]...)
	}
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	listFilter := newFilterFlags(listCmd, true)

	summaryCmd := flag.NewFlagSet("summary", flag.ExitOnError)
	summaryFilter := newFilterFlags(summaryCmd, false)

	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportOut := exportCmd.String("out", "inventory.csv", "The output file.")
	exportFilter := newFilterFlags(exportCmd, false)

	certificateCmd := flag.NewFlagSet("certificate", flag.ExitOnError)
	certificateID := certificateCmd.String("id", "", "The item's ID.")
	certificateOut := certificateCmd.String("out", "", "The output file. Defaults to certificate-<id>.txt.")

	deleteCmd := flag.NewFlagSet("delete", flag.ExitOnError)
	deleteID := deleteCmd.String("id", "", "The item's ID.")

	switch args[1] {
	case "list":
		if err := listCmd.Parse(args[2:]); err != nil {
			return err
		}
		filter, err := listFilter.filter()
		if err != nil {
			return err
		}
		return cli.list(filter)
	case "summary":
		if err := summaryCmd.Parse(args[2:]); err != nil {
			return err
		}
		filter, err := summaryFilter.filter()
		if err != nil {
			return err
		}
		return cli.summary(filter)
	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		filter, err := exportFilter.filter()
		if err != nil {
			return err
		}
		return cli.export(filter, *exportOut)
	case "certificate":
		if err := certificateCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *certificateID == "" {
			certificateCmd.Usage()
			return errHelp
		}
		return cli.certificate(*certificateID, *certificateOut)
	case "delete":
		if err := deleteCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *deleteID == "" {
			deleteCmd.Usage()
			return errHelp
		}
		return cli.delete(*deleteID)
	default:
		cli.printUsage()
		return errHelp
	}
}

// filterFlags collects the shared filter options of the list/summary/export
// subcommands.
type filterFlags struct {
	kind     *string
	location *string
	category *string
	status   *string
	search   *string
}

func newFilterFlags(cmd *flag.FlagSet, withSearch bool) *filterFlags {
	ff := &filterFlags{
		kind:     cmd.String("kind", "", "Location kind: school|headquarters|unassigned."),
		location: cmd.String("location", "", "School location ID (only with -kind school)."),
		category: cmd.String("category", "", "Category ID."),
		status:   cmd.String("status", "", "Item status: available|assigned|damaged|lost|disposed."),
	}
	ff.search = new(string)
	if withSearch {
		ff.search = cmd.String("search", "", "Search text.")
	}
	return ff
}

func (ff *filterFlags) filter() (inventory.FilterState, error) {
	fs := inventory.FilterState{
		LocationKind: inventory.LocationKind(core.CleanString(*ff.kind, true)),
		Status:       inventory.Status(core.CleanString(*ff.status, true)),
		Search:       *ff.search,
	}
	if *ff.location != "" {
		id, err := uuid.Parse(*ff.location)
		if err != nil {
			return fs, errors.Wrap(err, "parsing -location")
		}
		fs.LocationID = id
	}
	if *ff.category != "" {
		id, err := uuid.Parse(*ff.category)
		if err != nil {
			return fs, errors.Wrap(err, "parsing -category")
		}
		fs.CategoryID = id
	}
	fs.Clean()
	if err := fs.Validate(); err != nil {
		return fs, err
	}
	return fs, nil
}

// controller builds a controller against the configured backend, prompting
// for an API token when none is configured.
func (cli *commandLine) controller() (*inventory.Controller, error) {
	api := cli.api
	if api == nil {
		if cli.conf.API.Token == "" {
			fmt.Fprint(cli.out, "Enter API token:")
			token, err := readPasswordFunc(syscall.Stdin)
			fmt.Fprintln(cli.out)
			if err != nil {
				return nil, err
			}
			if len(token) == 0 {
				return nil, errors.New("an API token is required")
			}
			cli.conf.API.Token = string(token)
		}
		api = apiclient.NewClient(cli.conf)
	}
	return inventory.NewController(api, cli.notifier, cli.logger), nil
}

// open initializes a controller and applies the given filter to it.
func (cli *commandLine) open(ctx context.Context, filter inventory.FilterState) (*inventory.Controller, error) {
	ctrl, err := cli.controller()
	if err != nil {
		return nil, err
	}
	ctrl.Initialize(ctx)

	if filter.LocationKind != "" {
		if err := ctrl.UpdateFilter(ctx, inventory.FilterLocationKind, filter.LocationKind); err != nil {
			return nil, err
		}
	}
	if filter.LocationID != uuid.Nil {
		if err := ctrl.UpdateFilter(ctx, inventory.FilterLocationID, filter.LocationID); err != nil {
			return nil, err
		}
	}
	if filter.CategoryID != uuid.Nil {
		if err := ctrl.UpdateFilter(ctx, inventory.FilterCategory, filter.CategoryID); err != nil {
			return nil, err
		}
	}
	if filter.Status != "" {
		if err := ctrl.UpdateFilter(ctx, inventory.FilterStatus, filter.Status); err != nil {
			return nil, err
		}
	}
	if filter.Search != "" {
		if err := ctrl.UpdateFilter(ctx, inventory.FilterSearch, filter.Search); err != nil {
			return nil, err
		}
	}
	return ctrl, nil
}

func (cli *commandLine) list(filter inventory.FilterState) error {
	ctx := context.Background()
	ctrl, err := cli.open(ctx, filter)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tKIND\tSTATUS\tVALUE")
	for _, item := range ctrl.Items() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			item.ID, item.Name, item.LocationKind, item.Status, item.PurchaseValue.StringFixed(2))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "\n%d item(s), page total %s\n", len(ctrl.Items()), ctrl.TotalValue().StringFixed(2))
	return nil
}

func (cli *commandLine) summary(filter inventory.FilterState) error {
	ctx := context.Background()
	ctrl, err := cli.open(ctx, filter)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	summary := ctrl.Summary()
	fmt.Fprintf(cli.out, "%d item(s), total value %s\n", summary.TotalCount, summary.TotalValue.StringFixed(2))
	for _, point := range ctrl.StatusChartData() {
		fmt.Fprintf(cli.out, "  %-12s %d\n", point.Name, int(point.Value))
	}
	for _, point := range ctrl.CategoryChartData() {
		fmt.Fprintf(cli.out, "  %-12s %d\n", point.Name, int(point.Value))
	}
	return nil
}

func (cli *commandLine) export(filter inventory.FilterState, out string) error {
	ctx := context.Background()
	ctrl, err := cli.open(ctx, filter)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	doc := ctrl.ExportCurrentView(ctx)
	if doc == nil {
		return errors.New("export failed")
	}
	if err := os.WriteFile(out, doc, 0644); err != nil {
		return errors.Wrap(err, "writing "+out)
	}
	fmt.Fprintf(cli.out, "report written to %s\n", out)
	return nil
}

func (cli *commandLine) certificate(rawID, out string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return errors.Wrap(err, "parsing -id")
	}
	if out == "" {
		out = "certificate-" + id.String() + ".txt"
	}

	ctx := context.Background()
	ctrl, err := cli.open(ctx, inventory.FilterState{})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	doc := ctrl.PrintCertificate(ctx, id)
	if doc == nil {
		return errors.New("certificate generation failed")
	}
	if err := os.WriteFile(out, doc, 0644); err != nil {
		return errors.Wrap(err, "writing "+out)
	}
	fmt.Fprintf(cli.out, "certificate written to %s\n", out)
	return nil
}

func (cli *commandLine) delete(rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return errors.Wrap(err, "parsing -id")
	}

	ctx := context.Background()
	ctrl, err := cli.open(ctx, inventory.FilterState{})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	var staged *inventory.Item
	for _, item := range ctrl.Items() {
		if item.ID == id {
			item := item
			staged = &item
			break
		}
	}
	if staged == nil {
		return errors.Errorf("item %s not found", id)
	}

	ctrl.RequestDelete(*staged)
	if !ctrl.ModalOpen(inventory.ModalConfirmDelete) {
		return errors.New("delete refused")
	}
	ctrl.ConfirmDelete(ctx)
	if ctrl.ModalOpen(inventory.ModalConfirmDelete) {
		return errors.New("delete failed")
	}
	fmt.Fprintf(cli.out, "item %s deleted\n", id)
	return nil
}
