package main

import (
	"context"

	"github.com/aquilax/debateboard/argument"
)

type seedTopic struct {
	title, description, category string
}

var defaultTopics = []seedTopic{
	{
		title:       "O voto deveria ser facultativo no Brasil?",
		description: "Discuta se a obrigatoriedade do voto fortalece ou enfraquece a democracia.",
		category:    "Política",
	},
	{
		title:       "A inteligência artificial vai substituir professores?",
		description: "Ferramentas de IA já corrigem provas e explicam conteúdos. Qual deve ser o papel do professor?",
		category:    "Tecnologia",
	},
	{
		title:       "O ensino domiciliar deveria ser permitido?",
		description: "Pais devem poder educar os filhos em casa, sem matrícula escolar?",
		category:    "Educação",
	},
	{
		title:       "Redes sociais deveriam exigir verificação de identidade?",
		description: "Anonimato protege a liberdade de expressão ou favorece abusos?",
		category:    "Sociedade",
	},
}

// seedTopics inserts the default approved topics into an empty database.
func (m *Model) seedTopics(ctx context.Context) error {
	total, err := m.db.GetTotalTopics(ctx, argument.StatusApproved)
	if err != nil || total > 0 {
		return err
	}
	for _, st := range defaultTopics {
		if _, err := m.addTopic(ctx, nil, st.title, st.description, st.category, argument.StatusApproved); err != nil {
			return err
		}
	}
	return nil
}
