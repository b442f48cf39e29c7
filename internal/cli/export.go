package cli

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/LeJamon/goShadowOracle/internal/oracle"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var exportDir string

// AccountFile is the account JSON format accepted by
// `solana-test-validator --account <address> <file>`.
type AccountFile struct {
	Pubkey  string      `json:"pubkey"`
	Account AccountJSON `json:"account"`
}

// AccountJSON is the account body of an AccountFile.
type AccountJSON struct {
	Lamports   uint64    `json:"lamports"`
	Data       [2]string `json:"data"`
	Owner      string    `json:"owner"`
	Executable bool      `json:"executable"`
	RentEpoch  uint64    `json:"rentEpoch"`
	Space      int       `json:"space"`
}

// NewAccountFile renders account in validator JSON form.
func NewAccountFile(address solana.PublicKey, account oracle.Account) AccountFile {
	return AccountFile{
		Pubkey: address.String(),
		Account: AccountJSON{
			Lamports:   account.Lamports,
			Data:       [2]string{base64.StdEncoding.EncodeToString(account.Data), "base64"},
			Owner:      account.Owner.String(),
			Executable: account.Executable,
			RentEpoch:  account.RentEpoch,
			Space:      len(account.Data),
		},
	}
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every feed account as a validator account JSON file",
	Long: `Write one <address>.json file per feed account into the export directory.
Load them with: solana-test-validator --account <address> <address>.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := exportDir
		if dir == "" {
			dir = cfg.Export.Dir
		}
		return withSession(cmd.Context(), func(s *session) error {
			n, err := exportAccounts(cmd.Context(), s, dir, cfg.Export.Workers)
			if err != nil {
				return err
			}
			s.log.WithField("dir", dir).WithField("accounts", n).Info("accounts exported")
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d accounts to %s\n", n, dir)
			return nil
		})
	},
}

// exportAccounts writes every feed of the enabled providers into dir using
// up to workers concurrent writers.
func exportAccounts(ctx context.Context, s *session, dir string, workers int) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create export directory: %w", err)
	}
	providers, err := s.providers("")
	if err != nil {
		return 0, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	var written atomic.Int64
	for _, p := range providers {
		for _, address := range p.Feeds() {
			address := address
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				account, err := s.ledger.GetAccount(address)
				if err != nil {
					return fmt.Errorf("read %s: %w", address, err)
				}
				raw, err := json.MarshalIndent(NewAccountFile(address, account), "", "  ")
				if err != nil {
					return err
				}
				path := filepath.Join(dir, address.String()+".json")
				if err := os.WriteFile(path, raw, 0o644); err != nil {
					return err
				}
				written.Add(1)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return int(written.Load()), err
	}
	return int(written.Load()), nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "export directory (default from config)")
}
