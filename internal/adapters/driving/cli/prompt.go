package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

var (
	promptName        string
	promptContent     string
	promptFile        string
	promptDescription string
	promptActivate    bool
	promptListJSON    bool
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Manage answer prompt templates",
	Long: `Prompt templates control how the ask command phrases its request to the
generation model. Templates use {{context}} and {{query}} placeholders.
At most one prompt is active; without one the built-in template is used.`,
}

var promptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompts, newest first",
	Args:  cobra.NoArgs,
	RunE:  runPromptList,
}

var promptGetCmd = &cobra.Command{
	Use:   "get [prompt-id]",
	Short: "Show a prompt",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptGet,
}

var promptCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a prompt",
	Args:  cobra.NoArgs,
	RunE:  runPromptCreate,
}

var promptUpdateCmd = &cobra.Command{
	Use:   "update [prompt-id]",
	Short: "Update a prompt's name, content or description",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptUpdate,
}

var promptDeleteCmd = &cobra.Command{
	Use:   "delete [prompt-id]",
	Short: "Delete a prompt",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptDelete,
}

var promptActivateCmd = &cobra.Command{
	Use:   "activate [prompt-id]",
	Short: "Use a prompt for answers",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptActivate,
}

var promptDeactivateCmd = &cobra.Command{
	Use:   "deactivate",
	Short: "Fall back to the built-in template",
	Args:  cobra.NoArgs,
	RunE:  runPromptDeactivate,
}

var promptActiveCmd = &cobra.Command{
	Use:   "active",
	Short: "Print the template used for answers",
	Args:  cobra.NoArgs,
	RunE:  runPromptActive,
}

var initPromptCmd = &cobra.Command{
	Use:   "init-prompt",
	Short: "Create and activate the default prompt if none is active",
	Args:  cobra.NoArgs,
	RunE:  runInitPrompt,
}

func init() {
	promptListCmd.Flags().BoolVar(&promptListJSON, "json", false, "output prompts as JSON")

	for _, c := range []*cobra.Command{promptCreateCmd, promptUpdateCmd} {
		c.Flags().StringVarP(&promptName, "name", "n", "", "prompt name")
		c.Flags().StringVarP(&promptContent, "content", "c", "", "template text")
		c.Flags().StringVarP(&promptFile, "file", "f", "", "read the template from a file")
		c.Flags().StringVarP(&promptDescription, "description", "d", "", "short description")
	}
	promptCreateCmd.Flags().BoolVar(&promptActivate, "activate", false, "activate the new prompt")

	promptCmd.AddCommand(promptListCmd)
	promptCmd.AddCommand(promptGetCmd)
	promptCmd.AddCommand(promptCreateCmd)
	promptCmd.AddCommand(promptUpdateCmd)
	promptCmd.AddCommand(promptDeleteCmd)
	promptCmd.AddCommand(promptActivateCmd)
	promptCmd.AddCommand(promptDeactivateCmd)
	promptCmd.AddCommand(promptActiveCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(initPromptCmd)
}

func runPromptList(cmd *cobra.Command, _ []string) error {
	if promptService == nil {
		return notConfigured("prompt service")
	}

	prompts, err := promptService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list prompts: %w", err)
	}

	if promptListJSON {
		return writeJSON(cmd, prompts)
	}
	if len(prompts) == 0 {
		cmd.Println("No prompts. Run 'ragline init-prompt' to create the default one.")
		return nil
	}

	for i := range prompts {
		marker := " "
		if prompts[i].Active {
			marker = successStyle.Render("*")
		}
		cmd.Printf("%s %s  %s (v%s)\n", marker, prompts[i].ID, prompts[i].Name, prompts[i].Version)
		if prompts[i].Description != "" {
			cmd.Printf("    %s\n", dimStyle.Render(prompts[i].Description))
		}
	}
	return nil
}

func runPromptGet(cmd *cobra.Command, args []string) error {
	if promptService == nil {
		return notConfigured("prompt service")
	}

	p, err := promptService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get prompt: %w", err)
	}
	printPrompt(cmd, p)
	return nil
}

func runPromptCreate(cmd *cobra.Command, _ []string) error {
	if promptService == nil {
		return notConfigured("prompt service")
	}

	content, err := promptText()
	if err != nil {
		return err
	}
	if content == "" {
		return errors.New("prompt content is required (--content or --file)")
	}

	p, err := promptService.Create(cmd.Context(), promptName, content, promptDescription)
	if err != nil {
		return fmt.Errorf("failed to create prompt: %w", err)
	}
	if promptActivate {
		if err := promptService.Activate(cmd.Context(), p.ID); err != nil {
			return fmt.Errorf("failed to activate prompt: %w", err)
		}
	}

	cmd.Printf("Prompt %s created.\n", p.ID)
	return nil
}

func runPromptUpdate(cmd *cobra.Command, args []string) error {
	if promptService == nil {
		return notConfigured("prompt service")
	}

	content, err := promptText()
	if err != nil {
		return err
	}

	p, err := promptService.Update(cmd.Context(), args[0], promptName, content, promptDescription)
	if err != nil {
		return fmt.Errorf("failed to update prompt: %w", err)
	}

	cmd.Printf("Prompt %s updated to version %s.\n", p.ID, p.Version)
	return nil
}

func runPromptDelete(cmd *cobra.Command, args []string) error {
	if promptService == nil {
		return notConfigured("prompt service")
	}

	if err := promptService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete prompt: %w", err)
	}

	cmd.Printf("Prompt %s deleted.\n", args[0])
	return nil
}

func runPromptActivate(cmd *cobra.Command, args []string) error {
	if promptService == nil {
		return notConfigured("prompt service")
	}

	if err := promptService.Activate(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to activate prompt: %w", err)
	}

	cmd.Printf("Prompt %s is now active.\n", args[0])
	return nil
}

func runPromptDeactivate(cmd *cobra.Command, _ []string) error {
	if promptService == nil {
		return notConfigured("prompt service")
	}

	if err := promptService.Deactivate(cmd.Context()); err != nil {
		return fmt.Errorf("failed to deactivate prompt: %w", err)
	}

	cmd.Println("No prompt is active; answers use the built-in template.")
	return nil
}

func runPromptActive(cmd *cobra.Command, _ []string) error {
	if promptService == nil {
		return notConfigured("prompt service")
	}

	p, err := promptService.Active(cmd.Context())
	if errors.Is(err, domain.ErrNotFound) {
		tmpl, terr := promptService.Template(cmd.Context())
		if terr != nil {
			return fmt.Errorf("failed to load template: %w", terr)
		}
		cmd.Println(dimStyle.Render("(built-in template)"))
		cmd.Println(tmpl)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get active prompt: %w", err)
	}
	printPrompt(cmd, p)
	return nil
}

func runInitPrompt(cmd *cobra.Command, _ []string) error {
	if promptService == nil {
		return notConfigured("prompt service")
	}

	p, created, err := promptService.Seed(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to seed prompt: %w", err)
	}
	if created {
		cmd.Printf("Default prompt %s created and activated.\n", p.ID)
	} else {
		cmd.Printf("Prompt %q (%s) is already active.\n", p.Name, p.ID)
	}
	return nil
}

// promptText returns --content, or the contents of --file.
func promptText() (string, error) {
	if promptFile == "" {
		return promptContent, nil
	}
	if promptContent != "" {
		return "", errors.New("use either --content or --file, not both")
	}
	data, err := os.ReadFile(promptFile)
	if err != nil {
		return "", fmt.Errorf("read prompt file: %w", err)
	}
	return string(data), nil
}

func printPrompt(cmd *cobra.Command, p *domain.Prompt) {
	status := "inactive"
	if p.Active {
		status = successStyle.Render("active")
	}
	cmd.Printf("Prompt: %s\n\n", p.ID)
	cmd.Printf("  Name:     %s\n", p.Name)
	cmd.Printf("  Version:  %s\n", p.Version)
	cmd.Printf("  Status:   %s\n", status)
	if p.Description != "" {
		cmd.Printf("  About:    %s\n", p.Description)
	}
	cmd.Printf("  Updated:  %s\n\n", p.UpdatedAt.Local().Format(timeLayout))
	cmd.Println(p.Content)
}
