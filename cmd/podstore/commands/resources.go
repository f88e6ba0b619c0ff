package commands

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/podstore/pkg/rdfio"
	"github.com/marmos91/podstore/pkg/resource"
)

var lsCmd = &cobra.Command{
	Use:   "ls <container>",
	Short: "List the direct children of a container",
	Args:  cobra.ExactArgs(1),
	RunE:  runLs,
}

var getCmd = &cobra.Command{
	Use:   "get <resource>",
	Short: "Print a resource's content to stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var putCmd = &cobra.Command{
	Use:   "put <resource> [file]",
	Short: "Create or replace a data resource from a file or stdin",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runPut,
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <container>",
	Short: "Create a container, materializing missing ancestors",
	Args:  cobra.ExactArgs(1),
	RunE:  runMkdir,
}

var rmCmd = &cobra.Command{
	Use:   "rm <resource>",
	Short: "Delete a resource or empty container",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

var statCmd = &cobra.Command{
	Use:   "stat <resource>",
	Short: "Print a resource's metadata as N-Quads",
	Args:  cobra.ExactArgs(1),
	RunE:  runStat,
}

var putContentType string

func init() {
	putCmd.Flags().StringVar(&putContentType, "content-type", "", "content type of the uploaded data")
}

func runLs(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.teardown()

	id := env.resolveIdentifier(args[0])
	if !id.IsContainer() {
		id = resource.ID(id.Path + "/")
	}

	repr, err := env.store.GetRepresentation(cmd.Context(), id)
	if err != nil {
		return err
	}
	defer repr.Data.Close()

	children := repr.Metadata.ContainedResources()
	names := make([]string, 0, len(children))
	for _, child := range children {
		names = append(names, child.Path)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.teardown()

	repr, err := env.store.GetRepresentation(cmd.Context(), env.resolveIdentifier(args[0]))
	if err != nil {
		return err
	}
	defer repr.Data.Close()

	_, err = io.Copy(os.Stdout, repr.Data)
	return err
}

func runPut(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.teardown()

	id := env.resolveIdentifier(args[0])
	if id.IsContainer() {
		return fmt.Errorf("%s is a container; use mkdir", id.Path)
	}

	var data io.ReadCloser = os.Stdin
	if len(args) == 2 {
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		data = f
	}

	meta := resource.NewMetadata(id)
	if putContentType != "" {
		meta.SetContentType(putContentType)
	}
	if err := env.store.SetRepresentation(cmd.Context(), id, resource.NewRepresentation(meta, data)); err != nil {
		return err
	}
	fmt.Println(id.Path)
	return nil
}

func runMkdir(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.teardown()

	id := env.resolveIdentifier(args[0])
	if !id.IsContainer() {
		id = resource.ID(id.Path + "/")
	}

	repr := resource.EmptyRepresentation(resource.NewMetadata(id))
	if err := env.store.SetRepresentation(cmd.Context(), id, repr); err != nil {
		return err
	}
	fmt.Println(id.Path)
	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.teardown()

	id := env.resolveIdentifier(args[0])
	if err := env.store.DeleteResource(cmd.Context(), id); err != nil {
		// Retry with the container shape so "rm c" can delete container "c/".
		if resource.IsNotFoundError(err) && !strings.HasSuffix(args[0], "/") {
			return env.store.DeleteResource(cmd.Context(), resource.ID(id.Path+"/"))
		}
		return err
	}
	return nil
}

func runStat(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.teardown()

	found, err := env.store.HasResource(cmd.Context(), env.resolveIdentifier(args[0]))
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no resource at %s", args[0])
	}

	repr, err := env.store.GetRepresentation(cmd.Context(), env.resolveIdentifier(args[0]))
	if err != nil {
		// A container may only exist in its slash form.
		repr, err = env.store.GetRepresentation(cmd.Context(), env.resolveIdentifier(args[0]).ToggleSlash())
		if err != nil {
			return err
		}
	}
	defer repr.Data.Close()

	return rdfio.SerializeQuads(cmd.Context(), os.Stdout, repr.Metadata.Quads(), "")
}
