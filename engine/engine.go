package engine

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"time"

	"github.com/deepmap/oapi-codegen/pkg/runtime"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eid-foundation/bankid-session/api"
	"github.com/eid-foundation/bankid-session/pkg"
	"github.com/eid-foundation/bankid-session/pkg/qr"
	"github.com/eid-foundation/bankid-session/pkg/services"
	"github.com/eid-foundation/bankid-session/pkg/uservisible"
)

// Engine bundles the command tree, flag set and http routes of this module.
type Engine struct {
	Cmd       *cobra.Command
	FlagSet   *pflag.FlagSet
	Configure func() error
	Routes    func(router runtime.EchoRouter)
}

// NewEngine creates and returns a new Engine instance.
func NewEngine() *Engine {
	flows := pkg.Instance()

	return &Engine{
		Cmd:       cmd(),
		FlagSet:   flagSet(),
		Configure: flows.Configure,
		Routes: func(router runtime.EchoRouter) {
			api.RegisterHandlers(router, &api.Wrapper{Flows: flows})
		},
	}
}

func cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bankid-session",
		Short: "commands related to BankID order sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "server",
		Short: "Run the standalone session server",
		Run: func(cmd *cobra.Command, args []string) {
			flows := pkg.Instance()
			echoServer := echo.New()
			echoServer.HideBanner = true
			echoServer.Use(middleware.Logger())

			api.RegisterHandlers(echoServer, &api.Wrapper{Flows: flows})

			logrus.Fatal(echoServer.Start(viper.GetString(pkg.ConfAddress)))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "authenticate",
		Short: "Run an interactive authentication order in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			flows := pkg.Instance()
			active, err := flows.StartAuthentication(context.Background())
			if err != nil {
				return err
			}
			defer flows.StopSession(active.ID)

			if err := runInteractive(cmd.OutOrStdout(), flows, active); err != nil {
				return err
			}
			if active.Session.Status() == services.StatusComplete {
				fmt.Fprintf(cmd.OutOrStdout(), "credential: %s\n", active.Session.Credential())
			}
			return nil
		},
	})

	signCmd := &cobra.Command{
		Use:   "sign",
		Short: "Fetch the pending document from the provider and run a signing order",
		RunE: func(cmd *cobra.Command, args []string) error {
			flows := pkg.Instance()

			document, err := flows.FetchDocument(context.Background())
			if err != nil {
				return fmt.Errorf("could not fetch document: %w", err)
			}

			meta := uservisible.Metadata{
				Author:       signMetadata["author"],
				CreationDate: signMetadata["created"],
				Language:     signMetadata["language"],
				ModDate:      signMetadata["modified"],
			}
			active, err := flows.StartSigning(context.Background(), document, meta)
			if err != nil {
				return err
			}
			defer flows.StopSession(active.ID)

			if err := runInteractive(cmd.OutOrStdout(), flows, active); err != nil {
				return err
			}

			signed, ok := active.Coordinator.SignedDocument()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no signed document obtained")
				return nil
			}
			if err := ioutil.WriteFile(signOutput, signed, 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed document written to %s\n", signOutput)
			return nil
		},
	}
	signCmd.Flags().StringToStringVar(&signMetadata, "metadata", map[string]string{}, "document metadata as key=value pairs (author, created, language, modified)")
	signCmd.Flags().StringVar(&signOutput, "output", "signed.pdf", "path the signed document is written to")
	cmd.AddCommand(signCmd)

	return cmd
}

var signMetadata map[string]string
var signOutput string

// runInteractive renders the animated QR code and the latest user message
// until the order resolves.
func runInteractive(out io.Writer, flows *pkg.Flows, active *pkg.ActiveSession) error {
	url, err := flows.LaunchURL(active.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "open on this device: %s\n\n", url)

	qr.RenderTerminal(active.Session.RefreshQr(time.Now()), out)
	fmt.Fprintf(out, "%s\n\n", active.Session.UserMessage())

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for now := range ticker.C {
		if active.Session.Status().Terminal() {
			break
		}
		frame := active.Session.RefreshQr(now)
		qr.RenderTerminal(frame, out)
		fmt.Fprintf(out, "%s\n\n", active.Session.UserMessage())
	}

	fmt.Fprintf(out, "%s\n", active.Session.UserMessage())
	return nil
}

func flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("bankid-session", pflag.ContinueOnError)

	flags.String(pkg.ConfAddress, "localhost:1323", "Interface and port for the http server to bind to")
	flags.String(pkg.ConfProviderURL, "https://localhost:7080", "Base URL of the identity provider")
	flags.String(pkg.ConfEndUserIP, "0.0.0.0", "Network-origin placeholder passed on order start")
	flags.String(pkg.ConfRedirectURL, "http://127.0.0.1:5173/", "Return URL embedded in launch deep links")
	flags.Duration(pkg.ConfPollInterval, 2*time.Second, "Collect polling cadence")
	flags.String(pkg.ConfConfigPath, "", "Directory holding an optional bankid-session.yaml config file")

	return flags
}
