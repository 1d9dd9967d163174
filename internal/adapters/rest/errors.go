package rest

import (
	"fmt"
	"net/http"

	"stock-orders/internal/core"
)

// APIError is a non-2xx answer from the backend. Message is the server's
// message when the body carries one, else the fallback for the operation.
type APIError struct {
	Status  int
	Message string
	Code    string
	Errors  []string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("%s (HTTP %d): %v", e.Message, e.Status, e.Errors)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// Unwrap lets callers match the core sentinels with errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return core.ErrNotFound
	case http.StatusConflict:
		return core.ErrConflict
	}
	return nil
}

// Fallback messages, shown when the server body has no message.
const (
	msgLoadArticles = "Erreur lors du chargement des articles"
	msgLoadArticle  = "Erreur lors du chargement de l'article"
	msgLoadParties  = "Erreur lors du chargement des tiers"
	msgLoadOrders   = "Erreur lors du chargement des commandes"
	msgLoadOrder    = "Erreur lors du chargement de la commande"
	msgCreateOrder  = "Erreur lors de la création de la commande"
	msgUpdateOrder  = "Erreur lors de la mise à jour de la commande"
	msgDeleteOrder  = "Erreur lors de la suppression de la commande"
	msgLoadLines    = "Erreur lors du chargement des lignes"
	msgAddLine      = "Erreur lors de l'ajout de la ligne"
	msgUpdateLine   = "Erreur lors de la mise à jour de la ligne"
	msgRemoveLine   = "Erreur lors de la suppression de la ligne"
	msgRemoveLines  = "Erreur lors de la suppression des lignes"

	msgLoadMovements  = "Erreur lors du chargement des mouvements de stock"
	msgCreateMovement = "Erreur lors de la création du mouvement de stock"
	msgUpdateMovement = "Erreur lors de la mise à jour du mouvement de stock"
	msgDeleteMovement = "Erreur lors de la suppression du mouvement de stock"
	msgLoadStock      = "Erreur lors du chargement du stock"
)
