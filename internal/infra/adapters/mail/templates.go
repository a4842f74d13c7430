package mail

import (
	"fmt"

	"github.com/AlexJaimeH/narra-sub000/internal/domain/ports/adapter"
)

func welcomeMessage(to, name, magicLink string) *adapter.Message {
	subject := "Bienvenido a Narra — tu cuenta está lista"
	html := fmt.Sprintf(`
		<html>
		<body>
			<h2>%s, tu cuenta de Narra está lista</h2>
			<p>Gracias por unirte. Tu acceso es de por vida.</p>
			<p><a href="%s">Entra a tu cuenta</a></p>
			<p>O copia y pega este enlace en tu navegador:</p>
			<p>%s</p>
			<p>Este enlace inicia tu sesión sin contraseña y caduca tras un solo uso.</p>
		</body>
		</html>
	`, greetName(name), magicLink, magicLink)

	text := fmt.Sprintf(`%s, tu cuenta de Narra está lista.

Gracias por unirte. Tu acceso es de por vida.

Entra a tu cuenta:
%s

Este enlace inicia tu sesión sin contraseña y caduca tras un solo uso.
	`, greetName(name), magicLink)

	return &adapter.Message{To: to, Subject: subject, HTML: html, Text: text}
}

func giftRecipientMessage(to, name, buyerName, giftMessage, magicLink string) *adapter.Message {
	subject := "Te han regalado Narra"
	who := buyerName
	if who == "" {
		who = "Alguien que te quiere"
	}
	note := ""
	noteText := ""
	if giftMessage != "" {
		note = fmt.Sprintf("<blockquote>%s</blockquote>", giftMessage)
		noteText = fmt.Sprintf("\nSu mensaje para ti:\n%s\n", giftMessage)
	}
	html := fmt.Sprintf(`
		<html>
		<body>
			<h2>%s, %s te ha regalado acceso de por vida a Narra</h2>
			%s
			<p><a href="%s">Entra a tu cuenta</a></p>
			<p>O copia y pega este enlace en tu navegador:</p>
			<p>%s</p>
		</body>
		</html>
	`, greetName(name), who, note, magicLink, magicLink)

	text := fmt.Sprintf(`%s, %s te ha regalado acceso de por vida a Narra.
%s
Entra a tu cuenta:
%s
	`, greetName(name), who, noteText, magicLink)

	return &adapter.Message{To: to, Subject: subject, HTML: html, Text: text}
}

func giftReceiptMessage(to, buyerName, recipientEmail, manageURL string) *adapter.Message {
	subject := "Tu regalo de Narra está activo"
	manage := ""
	manageText := ""
	if manageURL != "" {
		manage = fmt.Sprintf(`<p>Administra el regalo desde aquí:</p><p><a href="%s">%s</a></p>`, manageURL, manageURL)
		manageText = fmt.Sprintf("\nAdministra el regalo desde aquí:\n%s\n", manageURL)
	}
	html := fmt.Sprintf(`
		<html>
		<body>
			<h2>%s, tu regalo ya está activo</h2>
			<p>La cuenta de %s quedó creada y recibió su enlace de acceso.</p>
			%s
			<p>Guarda este correo: el enlace de administración es tu comprobante.</p>
		</body>
		</html>
	`, greetName(buyerName), recipientEmail, manage)

	text := fmt.Sprintf(`%s, tu regalo ya está activo.

La cuenta de %s quedó creada y recibió su enlace de acceso.
%s
Guarda este correo: el enlace de administración es tu comprobante.
	`, greetName(buyerName), recipientEmail, manageText)

	return &adapter.Message{To: to, Subject: subject, HTML: html, Text: text}
}

func activationInviteMessage(to, activationURL string) *adapter.Message {
	subject := "Tu regalo de Narra — actívalo cuando quieras"
	html := fmt.Sprintf(`
		<html>
		<body>
			<h2>Tu regalo está reservado</h2>
			<p>Cuando sepas a quién regalárselo, entra aquí y cuéntanos sus datos:</p>
			<p><a href="%s">Activar el regalo</a></p>
			<p>O copia y pega este enlace en tu navegador:</p>
			<p>%s</p>
			<p>El enlace no caduca y solo puede usarse una vez.</p>
		</body>
		</html>
	`, activationURL, activationURL)

	text := fmt.Sprintf(`Tu regalo de Narra está reservado.

Cuando sepas a quién regalárselo, entra aquí y cuéntanos sus datos:
%s

El enlace no caduca y solo puede usarse una vez.
	`, activationURL)

	return &adapter.Message{To: to, Subject: subject, HTML: html, Text: text}
}
