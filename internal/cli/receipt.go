package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tripspend/internal/core"
	applog "tripspend/internal/log"
	"tripspend/internal/workflow"
)

// cmdReceipt runs the full draft flow over a receipt file: upload and
// extraction, an interactive edit pass, then submit.
func (a *App) cmdReceipt(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: receipt <file>")
	}
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read receipt: %w", err)
	}

	wf := workflow.New(a.client, a.client, a.logger.WithComponent(applog.ComponentWorkflow))
	res, err := wf.UploadReceipt(ctx, core.ReceiptFile{
		Name: filepath.Base(path),
		Data: data,
	})
	if err != nil {
		return err
	}
	switch {
	case res.Err != nil:
		fmt.Fprintf(a.stderr, "Extraction failed (%v), fill the fields in by hand\n", a.describe(res.Err))
	case res.Warning != "":
		fmt.Fprintln(a.stderr, res.Warning)
	default:
		fmt.Fprintln(a.stdout, "Extracted from receipt:")
		a.printDraft(wf.Draft())
	}

	return a.editAndSubmit(ctx, wf)
}

// editAndSubmit is the interactive half of the workflow, shared by the
// receipt, add and edit commands. One directive per line:
//
//	<field> <value>   set a field (tripName, type, date, vendor, location, cost, comments)
//	show              print the draft
//	submit            validate and save
//	cancel            discard the draft
func (a *App) editAndSubmit(ctx context.Context, wf *workflow.Workflow) error {
	fmt.Fprintln(a.stdout, "Edit the draft ('show', '<field> <value>', 'submit', 'cancel'):")
	for {
		fmt.Fprint(a.stdout, "> ")
		line, err := a.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				wf.Cancel()
				return fmt.Errorf("input closed, draft discarded")
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		directive, rest, _ := strings.Cut(line, " ")
		switch directive {
		case "show":
			a.printDraft(wf.Draft())
		case "cancel":
			wf.Cancel()
			fmt.Fprintln(a.stdout, "Draft discarded")
			return nil
		case "submit":
			res, err := wf.Submit(ctx)
			if err != nil {
				var ve *core.ValidationError
				if errors.As(err, &ve) {
					for _, fe := range ve.Fields {
						fmt.Fprintf(a.stderr, "  %s: %s\n", fe.Field, fe.Message)
					}
					continue
				}
				fmt.Fprintf(a.stderr, "Submit failed: %v\n", a.describe(err))
				continue
			}
			verb := "Updated"
			if res.Created {
				verb = "Created"
			}
			fmt.Fprintf(a.stdout, "%s expense %s on trip %s (%s)\n",
				verb, res.Expense.ID, res.TripName, res.Expense.Cost)
			a.refreshTripCache(ctx, res.TripName)
			return nil
		default:
			if err := wf.EditField(directive, strings.TrimSpace(rest)); err != nil {
				fmt.Fprintf(a.stderr, "%v\n", err)
			}
		}
	}
}

func (a *App) printDraft(d core.Draft) {
	fields := [][2]string{
		{"tripName", d.TripName},
		{"type", d.Type},
		{"date", d.Date},
		{"vendor", d.Vendor},
		{"location", d.Location},
		{"cost", d.Cost},
		{"comments", d.Comments},
	}
	for _, f := range fields {
		v := f[1]
		if v == "" {
			v = "-"
		}
		fmt.Fprintf(a.stdout, "  %-9s %s\n", f[0], v)
	}
}
