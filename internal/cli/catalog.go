package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/arkham-companion/internal/api/response"
)

func newCardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Browse the card catalog",
	}

	var cardType string
	list := &cobra.Command{
		Use:   "list",
		Short: "List cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/cards"
			if cardType != "" {
				path += "?" + url.Values{"type": {cardType}}.Encode()
			}

			var cards []response.Card
			if err := client.Get(path, &cards); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(cards)
			return nil
		},
	}
	list.Flags().StringVar(&cardType, "type", "", "Only cards of this type")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a card with its translations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var card response.CardDetail
			if err := client.Get(fmt.Sprintf("/api/v1/cards/%d", id), &card); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(card)
			return nil
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func newCharactersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "characters",
		Short: "Browse the character catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List characters",
		RunE: func(cmd *cobra.Command, args []string) error {
			var characters []response.Character
			if err := client.Get("/api/v1/characters", &characters); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(characters)
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a character with its starting cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var character response.CharacterDetail
			if err := client.Get(fmt.Sprintf("/api/v1/characters/%d", id), &character); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(character)
			return nil
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return uint(id), nil
}
