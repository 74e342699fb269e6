package main

import (
	"messpos/internal/model"

	"github.com/shopspring/decimal"
)

// defaultMenu is the stock menu a new installation starts from.
func defaultMenu() []model.MenuItem {
	return []model.MenuItem{
		// Breakfast
		item(1, "Idli", 15, "Breakfast", "Steamed rice cakes (2 pieces)", morning, afternoon, night),
		item(2, "Dosa", 25, "Breakfast", "Crispy rice crepe", morning, afternoon, night),
		item(3, "Vada", 20, "Breakfast", "Deep fried lentil donuts (2 pieces)", morning, afternoon),
		item(4, "Upma", 18, "Breakfast", "Semolina breakfast dish", morning),
		item(5, "Pongal", 22, "Breakfast", "Rice and lentil dish", morning),
		item(6, "Poori", 20, "Breakfast", "Deep fried bread (3 pieces)", morning, afternoon),
		item(7, "Rava Dosa", 30, "Breakfast", "Crispy semolina crepe", morning, afternoon),

		// Lunch
		item(8, "Sambar Rice", 35, "Lunch", "Rice with lentil curry", afternoon, night),
		item(9, "Curd Rice", 30, "Lunch", "Rice with yogurt", afternoon, night),
		item(10, "Rasam Rice", 32, "Lunch", "Rice with tangy soup", afternoon, night),
		item(11, "Vegetable Rice", 40, "Lunch", "Mixed vegetable rice", afternoon, night),
		item(12, "Lemon Rice", 28, "Lunch", "Tangy lemon flavored rice", afternoon, night),
		item(13, "Meals", 60, "Lunch", "Complete South Indian thali", afternoon),
		item(14, "Biryani", 80, "Lunch", "Aromatic rice with spices", afternoon, night),

		// Dinner
		item(15, "Chapati", 8, "Dinner", "Indian flatbread (1 piece)", night),
		item(16, "Parotta", 12, "Dinner", "Layered flatbread (1 piece)", night),
		item(17, "Chicken Curry", 80, "Dinner", "Spicy chicken curry", afternoon, night),
		item(18, "Mutton Curry", 120, "Dinner", "Traditional mutton curry", afternoon, night),
		item(19, "Fish Curry", 90, "Dinner", "South Indian fish curry", afternoon, night),
		item(20, "Vegetable Curry", 45, "Dinner", "Mixed vegetable curry", night),
		item(21, "Dal Fry", 35, "Dinner", "Spiced lentil curry", night),

		// Beverages
		item(22, "Filter Coffee", 15, "Beverages", "Traditional South Indian coffee", morning, afternoon, night),
		item(23, "Tea", 10, "Beverages", "Indian masala tea", morning, afternoon, night),
		item(24, "Buttermilk", 12, "Beverages", "Spiced yogurt drink", afternoon, night),
		item(25, "Fresh Lime", 15, "Beverages", "Fresh lime water", afternoon, night),

		// Desserts
		item(26, "Payasam", 25, "Desserts", "Traditional sweet pudding", afternoon, night),
		item(27, "Halwa", 30, "Desserts", "Sweet semolina dessert", afternoon, night),
		item(28, "Gulab Jamun", 20, "Desserts", "Sweet milk dumplings (2 pieces)", afternoon, night),
	}
}

const (
	morning   = model.SessionMorning
	afternoon = model.SessionAfternoon
	night     = model.SessionNight
)

func item(id int, name string, price int64, category, description string, sessions ...model.Session) model.MenuItem {
	return model.MenuItem{
		ID:          id,
		Name:        name,
		Price:       decimal.NewFromInt(price),
		Category:    category,
		Description: description,
		Sessions:    sessions,
		Active:      true,
	}
}
