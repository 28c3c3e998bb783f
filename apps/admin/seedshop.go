package main

import (
	"context"

	"github.com/studify/backend/core/shop"
)

// defaultCatalog is the accessory set the shop launches with.
var defaultCatalog = []shop.Item{
	{Name: "Crown", Price: 200, Available: true, ImageKey: "crown"},
	{Name: "Headphones", Price: 120, Available: true, ImageKey: "headphones"},
	{Name: "Scarf", Price: 80, Available: true, ImageKey: "scarf"},
	{Name: "Cap", Price: 60, Available: true, ImageKey: "cap"},
	{Name: "Monocle", Price: 150, Available: true, ImageKey: "monocle"},
}

// seedShop loads the default catalog; items are matched by name so rerunning
// the command is safe.
func (cli *commandLine) seedShop() error {
	ctx := context.Background()

	existing, err := cli.shopRepo.QueryAllItems(ctx)
	if err != nil {
		return err
	}
	byName := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		byName[item.Name] = struct{}{}
	}

	for _, item := range defaultCatalog {
		if _, ok := byName[item.Name]; ok {
			continue
		}
		if _, err := cli.shopRepo.CreateItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
