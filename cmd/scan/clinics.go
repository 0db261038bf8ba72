package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/tenant-scan/internal/client/locate"
)

func newClinicsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clinics",
		Short: "List legal clinics and government offices near a location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

			location := resolveLocation(cmd.Context(), stderr, opts)
			if location == "" {
				// resolver already printed the manual-entry status
				return fmt.Errorf("%w: no location", errReported)
			}
			lat, lng, err := locate.ParseCoordinates(location)
			if err != nil {
				return reported(stderr, err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			list, err := newGateway(opts).Clinics(ctx, lat, lng)
			if err != nil {
				return reported(stderr, err)
			}
			if opts.asJSON {
				return writeJSON(stdout, list)
			}
			return renderClinics(stdout, list)
		},
	}
}

func newPingCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the gateway answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			msg, err := newGateway(opts).Welcome(cmd.Context())
			if err != nil {
				return reported(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}
