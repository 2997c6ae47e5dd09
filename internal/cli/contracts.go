package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/runnerr0/wochenfazit/internal/contracts"
	"github.com/runnerr0/wochenfazit/internal/storage"
)

// Execute implements the go-flags Commander interface for ContractsListCommand.
func (c *ContractsListCommand) Execute(args []string) error {
	ctx := context.Background()
	sess, cleanup, err := openSession(ctx, c.globals)
	if err != nil {
		return err
	}
	defer cleanup()

	return c.run(ctx, sess)
}

type jsonKeyword struct {
	ID         int64  `json:"id"`
	Keyword    string `json:"keyword"`
	ContractID string `json:"contract_id"`
	Task       string `json:"task"`
}

func (c *ContractsListCommand) run(ctx context.Context, sess *session) error {
	kws, err := sess.store.Keywords(ctx)
	if err != nil {
		return fmt.Errorf("list keywords: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		out := make([]jsonKeyword, len(kws))
		for i, k := range kws {
			out[i] = jsonKeyword{ID: k.ID, Keyword: k.Keyword, ContractID: k.ContractID, Task: k.Task}
		}
		return printJSON(map[string]any{"count": len(out), "keywords": out})
	}

	if len(kws) == 0 {
		fmt.Println("No contract keywords")
		return nil
	}
	for _, k := range kws {
		fmt.Printf("%-20s %-8s %s\n", k.Keyword, k.ContractID, k.Task)
	}
	return nil
}

// Execute implements the go-flags Commander interface for ContractsAddCommand.
func (c *ContractsAddCommand) Execute(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: contracts add <keyword> <contract-id> [task...]")
	}
	ctx := context.Background()
	sess, cleanup, err := openSession(ctx, c.globals)
	if err != nil {
		return err
	}
	defer cleanup()

	return c.run(ctx, sess, args)
}

func (c *ContractsAddCommand) run(ctx context.Context, sess *session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: contracts add <keyword> <contract-id> [task...]")
	}
	kw, err := contracts.Add(ctx, sess.store, args[0], args[1], strings.Join(args[2:], " "))
	if err != nil {
		return err
	}
	sess.log.Info("keyword added", "keyword", kw.Keyword, "contract", kw.ContractID)

	if c.globals != nil && c.globals.JSON {
		return printJSON(jsonKeyword{ID: kw.ID, Keyword: kw.Keyword, ContractID: kw.ContractID, Task: kw.Task})
	}
	fmt.Printf("Added %s → %s %s\n", kw.Keyword, kw.ContractID, kw.Task)
	return nil
}

// Execute implements the go-flags Commander interface for ContractsDeleteCommand.
func (c *ContractsDeleteCommand) Execute(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: contracts delete <keyword>")
	}
	ctx := context.Background()
	sess, cleanup, err := openSession(ctx, c.globals)
	if err != nil {
		return err
	}
	defer cleanup()

	return c.run(ctx, sess, args[0])
}

func (c *ContractsDeleteCommand) run(ctx context.Context, sess *session, keyword string) error {
	// Confirmation prompt unless --force
	if !c.Force {
		fmt.Printf("⚠ WARNING: This deletes every mapping of keyword %q.\n", keyword)
		question := "Entries using it will no longer resolve to a contract."
		if err := sess.prompt.ConfirmText(question, "DELETE"); err != nil {
			return err
		}
	}

	n, err := contracts.Delete(ctx, sess.store, keyword)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("unknown keyword %q", keyword)
		}
		return fmt.Errorf("delete keyword: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{"deleted": n, "keyword": keyword})
	}
	fmt.Printf("Deleted %d mapping(s) of %q.\n", n, keyword)
	return nil
}
