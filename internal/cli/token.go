package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"courtbook-service/internal/infrastructure/oauth"
)

func newGetTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-token",
		Short: "Run the Gmail OAuth consent flow and print the refresh token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(consoleFlag(cmd))
			if err != nil {
				return err
			}
			if a.cfg.GmailClientID == "" || a.cfg.GmailClientSecret == "" {
				return fmt.Errorf("GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET must be set")
			}

			auth := oauth.NewGmailOAuth(a.cfg.GmailClientID, a.cfg.GmailClientSecret, "", a.log)
			state := "courtbook-oauth"

			done := make(chan error, 1)
			mux := http.NewServeMux()
			mux.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("state") != state {
					http.Error(w, "invalid state parameter", http.StatusBadRequest)
					return
				}

				token, err := auth.ExchangeCode(r.Context(), r.URL.Query().Get("code"))
				if err != nil {
					http.Error(w, fmt.Sprintf("failed to exchange code: %v", err), http.StatusInternalServerError)
					done <- err
					return
				}

				fmt.Printf("\nRefresh Token: %s\n", token.RefreshToken)
				if js, err := auth.TokenToJSON(token); err == nil {
					fmt.Printf("\nToken JSON:\n%s\n", js)
				}

				fmt.Fprint(w, "Authentication successful! You can close this window.")
				done <- nil
			})

			srv := &http.Server{Addr: ":8090", Handler: mux}
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					done <- err
				}
			}()
			defer srv.Close()

			fmt.Printf("Open this URL in your browser:\n%s\n", auth.GenerateAuthURL(state))

			select {
			case err := <-done:
				return err
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}
		},
	}
}
