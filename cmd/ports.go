package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"freeze_dryer/internal/transport"
)

func portsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := transport.ListPorts()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(ports) == 0 {
				_, _ = fmt.Fprintln(out, "no serial ports found")
				return nil
			}
			for _, p := range ports {
				if p.IsUSB {
					_, _ = fmt.Fprintf(out, "%s\tusb %s:%s\t%s\n", p.Name, p.VID, p.PID, p.Product)
					continue
				}
				_, _ = fmt.Fprintf(out, "%s\n", p.Name)
			}
			return nil
		},
	}
}
