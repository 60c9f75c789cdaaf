// Package i18n holds the message catalogue used to turn validation and
// action error codes into user-facing text.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Default is the language used when nothing better can be detected.
const Default = "en"

var supported = []language.Tag{language.English, language.French}

var matcher = language.NewMatcher(supported)

var catalog = map[string]map[string]string{
	"en": {
		"required":               "Required",
		"invoice_name_required":  "Invoice Name is required",
		"total_min":              "1$ is minimum",
		"quantity_min":           "Quantity min 1",
		"rate_min":               "Rate min 1",
		"invoice_number_min":     "Number must be at least 1",
		"due_date_min":           "Due date must be 0 or more",
		"invalid_status":         "Invalid status",
		"invalid_currency":       "Invalid currency",
		"invalid_email":          "Invalid email address",
		"invalid_url":            "Invalid URL",
		"invalid_date":           "Invalid date",
		"addresses_min":          "At least one address is required",
		"invalid_address_type":   "Invalid address type",
		"message_min":            "Message must be at least 10 characters long",
		"expected_number":        "Expected number",
		"number_too_large":       "Number is too large",
		"total_max":              "Total is too large",
		"too_long":               "Too long",
		"user_not_found":         "User not found",
		"invoice_not_found":      "Invoice not found",
		"client_not_found":       "Client not found",
		"failed_create_invoice":  "Failed to create invoice",
		"failed_update_invoice":  "Failed to update invoice",
		"failed_delete_invoice":  "Failed to delete invoice",
		"failed_mark_paid":       "Failed to mark invoice as paid",
		"failed_create_client":   "Failed to create client",
		"failed_update_client":   "Failed to update client",
		"failed_delete_client":   "Failed to delete client",
		"failed_update_profile":  "Failed to update profile",
		"failed_send_message":    "Failed to send message. Please try again later.",
		"failed_send_reminder":   "Failed to send Email reminder",
		"failed_send_magic_link": "Failed to send sign-in link",
		"invalid_token":          "The sign-in link is invalid or has expired",
		"failed_render_pdf":      "Failed to generate invoice PDF",
		"internal_error":         "Something went wrong",
	},
	"fr": {
		"required":               "Requis",
		"invoice_name_required":  "Le nom de la facture est requis",
		"total_min":              "1$ minimum",
		"quantity_min":           "Quantité minimum 1",
		"rate_min":               "Tarif minimum 1",
		"invoice_number_min":     "Le numéro doit être au moins 1",
		"due_date_min":           "L'échéance doit être positive",
		"invalid_status":         "Statut invalide",
		"invalid_currency":       "Devise invalide",
		"invalid_email":          "Adresse e-mail invalide",
		"invalid_url":            "URL invalide",
		"invalid_date":           "Date invalide",
		"addresses_min":          "Au moins une adresse est requise",
		"invalid_address_type":   "Type d'adresse invalide",
		"message_min":            "Le message doit contenir au moins 10 caractères",
		"expected_number":        "Nombre attendu",
		"number_too_large":       "Nombre trop grand",
		"total_max":              "Total trop élevé",
		"too_long":               "Trop long",
		"user_not_found":         "Utilisateur introuvable",
		"invoice_not_found":      "Facture introuvable",
		"client_not_found":       "Client introuvable",
		"failed_create_invoice":  "Échec de la création de la facture",
		"failed_update_invoice":  "Échec de la mise à jour de la facture",
		"failed_delete_invoice":  "Échec de la suppression de la facture",
		"failed_mark_paid":       "Impossible de marquer la facture comme payée",
		"failed_create_client":   "Échec de la création du client",
		"failed_update_client":   "Échec de la mise à jour du client",
		"failed_delete_client":   "Échec de la suppression du client",
		"failed_update_profile":  "Échec de la mise à jour du profil",
		"failed_send_message":    "Échec de l'envoi du message. Réessayez plus tard.",
		"failed_send_reminder":   "Échec de l'envoi de la relance",
		"failed_send_magic_link": "Échec de l'envoi du lien de connexion",
		"invalid_token":          "Le lien de connexion est invalide ou a expiré",
		"failed_render_pdf":      "Échec de la génération du PDF",
		"internal_error":         "Une erreur est survenue",
	},
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	tag, _, _ := matcher.Match(tags...)
	base, _ := tag.Base()
	if _, ok := catalog[base.String()]; ok {
		return base.String()
	}
	return Default
}

// Supported reports whether lang has a catalogue.
func Supported(lang string) bool {
	_, ok := catalog[lang]
	return ok
}

// T translates code. Unknown languages fall back to the default catalogue and
// unknown codes are returned unchanged.
func T(lang, code string) string {
	if msgs, ok := catalog[lang]; ok {
		if m, ok := msgs[code]; ok {
			return m
		}
	}
	if m, ok := catalog[Default][code]; ok {
		return m
	}
	return code
}
